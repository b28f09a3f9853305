package ingest

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/examassist/waecrag/internal/adapter/utils"
	"github.com/examassist/waecrag/internal/domain/ragModel"
)

// yearPattern matches a plausible exam year. Explicit non-digit boundaries
// instead of \b, because underscores in filenames would defeat \b.
var yearPattern = regexp.MustCompile(`(?:^|\D)((?:19|20)\d{2})(?:\D|$)`)

// subjectKeywords maps filename hints to canonical subject names, checked
// in this order so the more specific aliases win.
var subjectKeywords = []struct {
	subject string
	aliases []string
}{
	{"mathematics", []string{"further maths", "mathematics", "maths", "math"}},
	{"english", []string{"literature in english", "use of english", "english"}},
	{"physics", []string{"physics"}},
	{"chemistry", []string{"chemistry"}},
	{"biology", []string{"biology"}},
	{"economics", []string{"economics"}},
	{"geography", []string{"geography"}},
	{"history", []string{"history"}},
	{"government", []string{"government"}},
	{"commerce", []string{"commerce"}},
	{"accounting", []string{"book keeping", "accounting", "accounts"}},
	{"agricultural science", []string{"agricultural science", "agric"}},
	{"technical drawing", []string{"technical drawing", "tech drawing"}},
	{"civic education", []string{"civic education"}},
	{"computer studies", []string{"computer studies"}},
}

// CollectDirectory walks dir, extracts the text of every supported file and
// stores each one as a document with subject and year inferred from its
// path. Files it cannot read are logged and skipped; only store failures
// abort the collection.
func CollectDirectory(ctx context.Context, dir string, store ragModel.DocumentStore) (int, error) {
	collected := 0

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || getDocType(path) == docTypeErr {
			return nil
		}

		text, extractErr := extractText(path)
		if extractErr != nil {
			logger.Error("Error extracting file, skipping", "path", path, "error", extractErr)
			return nil
		}
		if strings.TrimSpace(text) == "" {
			logger.Warn("File has no text, skipping", "path", path)
			return nil
		}

		doc := ragModel.Document{
			Id:        utils.GetNewUUID(),
			SourceURI: path,
			RawText:   text,
			Metadata: ragModel.DocumentMetadata{
				Name:    d.Name(),
				Subject: inferSubject(path),
				Year:    inferYear(path, text),
			},
		}
		if putErr := store.PutDocument(ctx, doc); putErr != nil {
			return fmt.Errorf("store document %s: %w", path, putErr)
		}

		logger.Info("Collected document", "path", path, "subject", doc.Metadata.Subject, "year", doc.Metadata.Year)
		collected++
		return nil
	})
	if err != nil {
		return collected, err
	}
	return collected, nil
}

func inferSubject(path string) string {
	normalized := strings.ToLower(path)
	for _, r := range []string{"_", "-", "."} {
		normalized = strings.ReplaceAll(normalized, r, " ")
	}

	for _, entry := range subjectKeywords {
		for _, alias := range entry.aliases {
			if strings.Contains(normalized, alias) {
				return entry.subject
			}
		}
	}
	return ""
}

// inferYear checks the file path first, then falls back to the newest
// plausible year mentioned in the content.
func inferYear(path string, content string) int {
	if m := yearPattern.FindStringSubmatch(filepath.Base(path)); m != nil {
		year, _ := strconv.Atoi(m[1])
		return year
	}
	for _, part := range strings.Split(filepath.Dir(path), string(filepath.Separator)) {
		if len(part) == 4 {
			if year, err := strconv.Atoi(part); err == nil && year >= 1990 && year <= 2030 {
				return year
			}
		}
	}

	best := 0
	for _, m := range yearPattern.FindAllStringSubmatch(content, -1) {
		year, _ := strconv.Atoi(m[1])
		if year >= 1990 && year <= 2030 && year > best {
			best = year
		}
	}
	return best
}
