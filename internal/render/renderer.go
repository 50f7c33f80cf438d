// Package render produces the HTML pages served by the library: book pages,
// the index listing, search results, and recommendation snippets. Handlers
// consume it behind an interface; nothing outside this package knows about
// templates.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"

	"github.com/ValdezFOmar/GoodReads/internal/catalog"
)

//go:embed templates/*.html
var templateFS embed.FS

// Pages renders every page type from the embedded templates.
type Pages struct {
	templates *template.Template
}

// NewPages parses the embedded templates.
func NewPages() (*Pages, error) {
	tmpl, err := template.New("").Funcs(template.FuncMap{
		"joinGenres": func(genres []string) string {
			return strings.Join(genres, ", ")
		},
	}).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parsing page templates: %w", err)
	}
	return &Pages{templates: tmpl}, nil
}

// bookLink is the listing entry shared by the index and search templates.
type bookLink struct {
	ID     string
	Title  string
	Genres []string
}

func toLinks(books []catalog.Book) []bookLink {
	links := make([]bookLink, len(books))
	for i, b := range books {
		links[i] = bookLink{ID: b.ID, Title: b.Title, Genres: b.Genres}
	}
	return links
}

func (p *Pages) execute(name string, data any) ([]byte, error) {
	var buf bytes.Buffer
	if err := p.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, fmt.Errorf("rendering %s: %w", name, err)
	}
	return buf.Bytes(), nil
}

// RenderBook renders the full page for a single book. The loader calls this
// once per book during ingestion and stores the result as the book's content.
func (p *Pages) RenderBook(book catalog.Book) ([]byte, error) {
	return p.execute("book.html", book)
}

// RenderIndex renders the index listing previewing at most limit books.
func (p *Pages) RenderIndex(books []catalog.Book, limit int) ([]byte, error) {
	if len(books) > limit {
		books = books[:limit]
	}
	return p.execute("index.html", struct {
		Books []bookLink
	}{toLinks(books)})
}

// RenderSearchResults renders the result page for a keyword query.
func (p *Pages) RenderSearchResults(words []string, books []catalog.Book) ([]byte, error) {
	return p.execute("search.html", struct {
		Query string
		Books []bookLink
	}{strings.Join(words, " "), toLinks(books)})
}

// RenderRecommendation renders the snippet appended to a book page when the
// session has enough history to warrant a suggestion.
func (p *Pages) RenderRecommendation(book catalog.Book) ([]byte, error) {
	return p.execute("recommendation.html", bookLink{ID: book.ID, Title: book.Title, Genres: book.Genres})
}
