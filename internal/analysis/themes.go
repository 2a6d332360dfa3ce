package analysis

import "strings"

// GeneralTheme is assigned when no registered theme matches; downstream
// consumers never see an empty theme field.
const GeneralTheme = "General"

// Theme is one named category with its trigger keywords. Matching is
// substring containment over normalized text, so keywords should avoid
// over-broad fragments.
type Theme struct {
	Name     string
	Keywords []string
}

// DefaultThemes returns the built-in registry. Order matters: matched theme
// names are joined in this order.
func DefaultThemes() []Theme {
	return []Theme{
		{Name: "Login/Access", Keywords: []string{"login", "password", "access", "otp", "cant open", "sign in", "error"}},
		{Name: "Performance", Keywords: []string{"slow", "lag", "stuck", "loading", "wait", "network", "connect"}},
		{Name: "Stability", Keywords: []string{"crash", "close", "bug", "fix", "update", "force stop"}},
		{Name: "UI/UX", Keywords: []string{"interface", "design", "look", "easy", "confusing", "hard", "user friendly"}},
		{Name: "Transactions", Keywords: []string{"transfer", "money", "send", "payment", "balance", "transaction"}},
	}
}

// ThemeClassifier assigns zero or more themes to a text by keyword
// containment. It holds an immutable copy of its registry and is safe for
// concurrent use.
type ThemeClassifier struct {
	themes []Theme
}

func NewThemeClassifier(registry []Theme) *ThemeClassifier {
	ts := make([]Theme, len(registry))
	for i, t := range registry {
		ts[i] = Theme{Name: t.Name, Keywords: append([]string(nil), t.Keywords...)}
	}
	return &ThemeClassifier{themes: ts}
}

// Classify returns the matched theme names joined with ", " in registry
// order, or GeneralTheme when nothing matches. Pure: no state, no external
// calls.
func (c *ThemeClassifier) Classify(text string) string {
	norm := Normalize(text)
	var found []string
	for _, t := range c.themes {
		for _, kw := range t.Keywords {
			if strings.Contains(norm, kw) {
				found = append(found, t.Name)
				break
			}
		}
	}
	if len(found) == 0 {
		return GeneralTheme
	}
	return strings.Join(found, ", ")
}
