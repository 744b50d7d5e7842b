package pages

import (
	"regexp"
	"strings"

	"github.com/starford/mdpages/internal/render"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// rootTitle is used for the root page when it has no title metadata.
const rootTitle = "index"

var titleSepRe = regexp.MustCompile(`[/-]+`)

// Title derives the display title of a page: the metadata title joined by
// spaces, else the logical path with slashes and dashes turned into spaces
// and title-cased, else "index".
func Title(logical string, meta render.Metadata) string {
	if t, ok := meta.Joined("title"); ok && strings.TrimSpace(t) != "" {
		return t
	}
	p := strings.Trim(logical, "/-")
	if p == "" {
		return rootTitle
	}
	return cases.Title(language.English).String(titleSepRe.ReplaceAllString(p, " "))
}
