package service

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"log"
	"os"
	"strings"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"

	"securecam-site/models"
	"securecam-site/utils"
)

//go:embed templates/*.html
var templateFS embed.FS

// uncategorizedName groups products whose category is missing or was deleted
const uncategorizedName = "Otros"

// CatalogGroup is one category section of the catalog sheet
type CatalogGroup struct {
	Name     string
	Products []models.Product
}

// CatalogServiceInterface defines the contract for catalog and quote sheets
type CatalogServiceInterface interface {
	RenderCatalogHTML(doc models.SiteData, includeInactive bool) (string, error)
	RenderQuoteHTML(doc models.SiteData, cart models.Cart, customer string, system models.SystemType) (string, error)
	GeneratePDF(ctx context.Context, renderPath string) ([]byte, error)
}

// CatalogService renders catalog and quote sheets and prints them to PDF
type CatalogService struct {
	templates  *template.Template
	baseURL    string // Base URL headless Chrome loads render pages from (e.g. "http://localhost:8080")
	chromePath string
}

// NewCatalogService creates a new CatalogService
func NewCatalogService(baseURL, chromePath string) (*CatalogService, error) {
	tmpl, err := template.New("sheets").
		Funcs(template.FuncMap{"price": utils.FormatPrice}).
		ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return &CatalogService{
		templates:  tmpl,
		baseURL:    strings.TrimRight(baseURL, "/"),
		chromePath: chromePath,
	}, nil
}

// Ensure CatalogService implements CatalogServiceInterface
var _ CatalogServiceInterface = (*CatalogService)(nil)

// GroupByCategory groups products in category order. Products whose category
// is unknown go to a trailing "Otros" group; empty groups are left out.
func GroupByCategory(catalog models.Catalog, products []models.Product) []CatalogGroup {
	byCategory := make(map[string][]models.Product)
	var orphans []models.Product
	for _, p := range products {
		if catalog.CategoryName(p.CategoryID) == "" {
			orphans = append(orphans, p)
			continue
		}
		byCategory[p.CategoryID] = append(byCategory[p.CategoryID], p)
	}

	groups := make([]CatalogGroup, 0, len(catalog.Categories)+1)
	for _, c := range catalog.Categories {
		if ps := byCategory[c.ID]; len(ps) > 0 {
			groups = append(groups, CatalogGroup{Name: c.Name, Products: ps})
			delete(byCategory, c.ID)
		}
	}
	if len(orphans) > 0 {
		groups = append(groups, CatalogGroup{Name: uncategorizedName, Products: orphans})
	}
	return groups
}

// RenderCatalogHTML renders the catalog sheet; inactive products only appear when includeInactive is set
func (s *CatalogService) RenderCatalogHTML(doc models.SiteData, includeInactive bool) (string, error) {
	products := doc.Catalog.ActiveProducts()
	if includeInactive {
		products = doc.Catalog.Products
	}

	data := struct {
		Branding models.Branding
		Title    string
		Subtitle string
		Groups   []CatalogGroup
	}{
		Branding: doc.Branding,
		Title:    doc.Equipment.Title,
		Subtitle: doc.Equipment.Subtitle,
		Groups:   GroupByCategory(doc.Catalog, products),
	}

	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, "catalog.html", data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.String(), nil
}

// RenderQuoteHTML renders a quote for cart; ids missing from the catalog are skipped
func (s *CatalogService) RenderQuoteHTML(doc models.SiteData, cart models.Cart, customer string, system models.SystemType) (string, error) {
	lines := cart.Lines(doc.Catalog)
	totals := make([]int64, len(lines))
	for i, l := range lines {
		totals[i] = l.LineTotal
	}

	data := struct {
		Branding models.Branding
		Customer string
		System   models.SystemType
		Lines    []models.CartLine
		Total    int64
	}{
		Branding: doc.Branding,
		Customer: customer,
		System:   system,
		Lines:    lines,
		Total:    utils.SumLines(totals...),
	}

	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, "quote.html", data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.String(), nil
}

// detectChromePath returns the configured Chrome path when it exists,
// otherwise the first common installation path found
func detectChromePath(configured string) string {
	if configured != "" {
		if _, err := os.Stat(configured); err == nil {
			return configured
		}
		log.Printf("⚠️  CHROME_PATH %s not found, probing common paths", configured)
	}

	paths := []string{
		"/usr/bin/chromium",
		"/usr/bin/chromium-browser",
		"/usr/bin/google-chrome",
		"/usr/bin/google-chrome-stable",
		"/snap/bin/chromium",
	}
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// GeneratePDF loads renderPath from this server in headless Chrome and prints it to an A4 PDF
func (s *CatalogService) GeneratePDF(ctx context.Context, renderPath string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.NoSandbox, // Required for running in Docker/containers
	)
	if chromePath := detectChromePath(s.chromePath); chromePath != "" {
		opts = append(opts, chromedp.ExecPath(chromePath))
	}
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	defer allocCancel()

	chromedpCtx, chromedpCancel := chromedp.NewContext(allocCtx)
	defer chromedpCancel()

	renderURL := s.baseURL + renderPath
	log.Printf("🖨️  GeneratePDF: rendering %s", renderURL)

	var pdfBuf []byte
	err := chromedp.Run(chromedpCtx,
		chromedp.Navigate(renderURL),
		chromedp.WaitReady("body"),
		// wait for fonts and images, giving up on each image after 5s
		chromedp.Evaluate(`
			Promise.all([
				document.fonts.ready,
				Promise.all(Array.from(document.images).map(img => img.complete ? null : new Promise(resolve => {
					const t = setTimeout(resolve, 5000);
					img.onload = img.onerror = () => { clearTimeout(t); resolve(); };
				})))
			]);
		`, nil, func(p *runtime.EvaluateParams) *runtime.EvaluateParams { return p.WithAwaitPromise(true) }),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			// A4: 8.27" x 11.69"
			pdfBuf, _, err = page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(8.27).
				WithPaperHeight(11.69).
				WithPreferCSSPageSize(true).
				Do(ctx)
			return err
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}

	log.Printf("✅ GeneratePDF: %d bytes", len(pdfBuf))
	return pdfBuf, nil
}
