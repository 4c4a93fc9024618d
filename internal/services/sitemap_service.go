package services

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/vwmedia/siteutil/internal/models"
	"github.com/vwmedia/siteutil/pkg/logger"
	"github.com/vwmedia/siteutil/pkg/metrics"
)

const (
	// SitemapFileName is the file written into the sitemap directory.
	SitemapFileName = "sitemap.xml"

	sitemapNamespace  = "http://www.sitemaps.org/schemas/sitemap/0.9"
	sitemapChangeFreq = "monthly"
)

// SitemapURL is one <url> entry.
type SitemapURL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod"`
	ChangeFreq string `xml:"changefreq"`
}

type urlSet struct {
	XMLName xml.Name     `xml:"urlset"`
	Xmlns   string       `xml:"xmlns,attr"`
	URLs    []SitemapURL `xml:"url"`
}

// SitemapService writes sitemap.xml for every published post and page.
type SitemapService struct {
	db        *gorm.DB
	baseURL   string
	directory string

	mu  sync.Mutex
	log *zap.Logger
}

// NewSitemapService constructs the service. baseURL prefixes every permalink.
func NewSitemapService(db *gorm.DB, baseURL, directory string) (*SitemapService, error) {
	if db == nil {
		return nil, errors.New("sitemap service: db is required")
	}
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("sitemap service: base url is required")
	}
	if strings.TrimSpace(directory) == "" {
		directory = "."
	}
	return &SitemapService{
		db:        db,
		baseURL:   baseURL,
		directory: directory,
		log:       logger.WithModule("sitemap"),
	}, nil
}

// Path returns the location of the generated file.
func (s *SitemapService) Path() string {
	return filepath.Join(s.directory, SitemapFileName)
}

// Permalink returns the public URL of a post.
func (s *SitemapService) Permalink(slug string) string {
	return s.baseURL + "/" + strings.Trim(slug, "/") + "/"
}

// Entries lists published posts and pages, most recently modified first.
func (s *SitemapService) Entries(ctx context.Context) ([]SitemapURL, error) {
	var posts []models.Post
	err := s.db.WithContext(ensureContext(ctx)).
		Where("status = ?", models.PostStatusPublished).
		Where("type IN ?", []string{models.PostTypePost, models.PostTypePage}).
		Order("modified_at DESC").
		Find(&posts).Error
	if err != nil {
		return nil, fmt.Errorf("sitemap service: list posts: %w", err)
	}

	entries := make([]SitemapURL, 0, len(posts))
	for _, post := range posts {
		entries = append(entries, SitemapURL{
			Loc:        s.Permalink(post.Slug),
			LastMod:    post.ModifiedAt.UTC().Format(time.DateOnly),
			ChangeFreq: sitemapChangeFreq,
		})
	}
	return entries, nil
}

// Render encodes entries as a sitemaps.org urlset document.
func Render(entries []SitemapURL) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)

	enc := xml.NewEncoder(&buf)
	enc.Indent("", "\t")
	if err := enc.Encode(urlSet{Xmlns: sitemapNamespace, URLs: entries}); err != nil {
		return nil, fmt.Errorf("sitemap service: encode: %w", err)
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// Build regenerates the sitemap file and returns the number of URLs written.
func (s *SitemapService) Build(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count, err := s.build(ctx)
	if err != nil {
		metrics.SitemapWrites.WithLabelValues("failure").Inc()
		s.log.Warn("sitemap build failed", zap.Error(err))
		return 0, err
	}

	metrics.SitemapWrites.WithLabelValues("success").Inc()
	metrics.SitemapEntries.Set(float64(count))
	s.log.Info("sitemap written", zap.String("path", s.Path()), zap.Int("urls", count))
	return count, nil
}

func (s *SitemapService) build(ctx context.Context) (int, error) {
	entries, err := s.Entries(ctx)
	if err != nil {
		return 0, err
	}
	doc, err := Render(entries)
	if err != nil {
		return 0, err
	}

	if err := os.MkdirAll(s.directory, 0o755); err != nil {
		return 0, fmt.Errorf("sitemap service: create directory: %w", err)
	}
	tmp, err := os.CreateTemp(s.directory, ".sitemap-*.xml")
	if err != nil {
		return 0, fmt.Errorf("sitemap service: temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(doc); err != nil {
		_ = tmp.Close()
		return 0, fmt.Errorf("sitemap service: write: %w", err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		_ = tmp.Close()
		return 0, fmt.Errorf("sitemap service: chmod: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return 0, fmt.Errorf("sitemap service: close: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.Path()); err != nil {
		return 0, fmt.Errorf("sitemap service: replace: %w", err)
	}
	return len(entries), nil
}
