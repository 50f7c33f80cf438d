// Package ingest turns the raw book-summaries dataset into catalog entries
// and inverted-index postings.
package ingest

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/ValdezFOmar/GoodReads/internal/catalog"
)

// The CMU Book Summary dataset is tab-separated:
// wikipedia id, freebase id, title, author, publication date,
// genres (JSON object of freebase id → label), summary.
const datasetFields = 7

// ParseStats reports what a parse pass kept, skipped, and filtered.
type ParseStats struct {
	Parsed   int
	Skipped  int
	Filtered int
}

// ParseDataset reads the TSV dataset and invokes fn for each usable record.
// Malformed lines are skipped; records missing an author or any genre are
// filtered out, matching the curation the library was built with. Parsing
// stops early if fn returns an error.
func ParseDataset(r io.Reader, fn func(book catalog.Book) error) (ParseStats, error) {
	var stats ParseStats

	scanner := bufio.NewScanner(r)
	// Some summaries run long; the default 64KiB token limit is too small.
	scanner.Buffer(make([]byte, 0, 1024*1024), 1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		book, ok := parseLine(line)
		if !ok {
			stats.Skipped++
			continue
		}
		if book.Author == "" || len(book.Genres) == 0 {
			stats.Filtered++
			continue
		}
		stats.Parsed++
		if err := fn(book); err != nil {
			return stats, err
		}
	}
	if err := scanner.Err(); err != nil {
		return stats, fmt.Errorf("reading dataset: %w", err)
	}
	return stats, nil
}

func parseLine(line string) (catalog.Book, bool) {
	fields := strings.Split(line, "\t")
	if len(fields) != datasetFields {
		return catalog.Book{}, false
	}
	return catalog.Book{
		ID:              fields[0],
		Title:           fields[2],
		Author:          fields[3],
		PublicationDate: fields[4],
		Genres:          parseGenres(fields[5]),
		Summary:         fields[6],
	}, fields[0] != "" && fields[2] != ""
}

// parseGenres decodes the genre JSON object and returns its labels in a
// stable order. Garbled JSON degrades to no genres rather than failing the
// record.
func parseGenres(raw string) []string {
	var m map[string]string
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return nil
	}
	genres := make([]string, 0, len(m))
	for _, label := range m {
		genres = append(genres, label)
	}
	sort.Strings(genres)
	return genres
}
