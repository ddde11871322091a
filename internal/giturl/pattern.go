// Package giturl implements the URL Pattern Engine (C2): parsing a Git
// remote string into structured attributes via an ordered, user-extensible
// regex pattern list, generalized from inovacc-clonr/internal/giturl's
// fixed-form SSH/HTTPS normalization into the Pattern model spec.md §4.2
// requires.
package giturl

import (
	"fmt"
	"regexp"
	"strings"
)

// ParsedRemote is the structured result of matching a remote string
// against a Pattern, per spec.md §3.
type ParsedRemote struct {
	Scheme string
	User   string
	Host   string
	Owner  string
	Repo   string
	VCS    string
}

// Pattern is a regex plus defaults and an optional render mode, per
// spec.md §3/§4.2. Regex must contain a named group "repo"; this is
// enforced by NewPattern at load time.
type Pattern struct {
	Name    string
	Regex   *regexp.Regexp
	Default ParsedRemote
	Infer   bool
	URL     string // template, used when Infer is false
}

// NewPattern compiles raw into a Pattern, validating that it declares a
// named "repo" capture group, per spec.md §4.2's load-time rejection rule.
func NewPattern(name, raw string, def ParsedRemote, infer bool, urlTemplate string) (*Pattern, error) {
	re, err := regexp.Compile(raw)
	if err != nil {
		return nil, fmt.Errorf("pattern %q: %w", name, err)
	}
	if !hasGroup(re, "repo") {
		return nil, fmt.Errorf("pattern %q: regex must contain a named capture group %q", name, "repo")
	}
	return &Pattern{Name: name, Regex: re, Default: def, Infer: infer, URL: urlTemplate}, nil
}

func hasGroup(re *regexp.Regexp, name string) bool {
	for _, n := range re.SubexpNames() {
		if n == name {
			return true
		}
	}
	return false
}

// Match applies the pattern to s, returning the parsed remote and true on
// a match, using named captures and falling back to the pattern's declared
// defaults for fields the regex did not capture.
func (p *Pattern) Match(s string) (ParsedRemote, bool) {
	m := p.Regex.FindStringSubmatch(s)
	if m == nil {
		return ParsedRemote{}, false
	}
	out := p.Default
	names := p.Regex.SubexpNames()
	for i, name := range names {
		if i == 0 || name == "" || m[i] == "" {
			continue
		}
		switch name {
		case "scheme":
			out.Scheme = m[i]
		case "user":
			out.User = m[i]
		case "host":
			out.Host = m[i]
		case "owner":
			out.Owner = m[i]
		case "repo":
			out.Repo = m[i]
		case "vcs":
			out.VCS = m[i]
		}
	}
	return out, true
}

// Render produces the canonical form of a successfully matched remote:
// via template substitution when Infer is false, or via the spec's
// fixed-shape synthesis when Infer is true.
func (p *Pattern) Render(pr ParsedRemote) string {
	if !p.Infer {
		return renderTemplate(p.URL, pr)
	}
	return Infer(pr)
}

// Infer synthesizes the canonical URL form
// {scheme://}{user@}{host}/{owner}/{repo}.git, omitting absent optional
// components, per spec.md §4.2.
func Infer(pr ParsedRemote) string {
	var b strings.Builder
	if pr.Scheme != "" {
		b.WriteString(pr.Scheme)
		b.WriteString("://")
	}
	if pr.User != "" {
		b.WriteString(pr.User)
		b.WriteString("@")
	}
	b.WriteString(pr.Host)
	b.WriteString("/")
	if pr.Owner != "" {
		b.WriteString(pr.Owner)
		b.WriteString("/")
	}
	b.WriteString(pr.Repo)
	if !strings.HasSuffix(pr.Repo, ".git") {
		b.WriteString(".git")
	}
	return b.String()
}

func renderTemplate(tmpl string, pr ParsedRemote) string {
	fields := map[string]string{
		"scheme": pr.Scheme,
		"user":   pr.User,
		"host":   pr.Host,
		"owner":  pr.Owner,
		"repo":   pr.Repo,
		"vcs":    pr.VCS,
	}
	out := tmpl
	for k, v := range fields {
		out = strings.ReplaceAll(out, "{{"+k+"}}", v)
	}
	return out
}

// Engine is an ordered list of patterns: user patterns first, then the
// built-ins, per spec.md §4.2 ("user patterns precede built-in defaults").
type Engine struct {
	patterns []*Pattern
}

// NewEngine builds an Engine from user-supplied patterns (evaluated first)
// followed by the built-in pattern set.
func NewEngine(user []*Pattern) *Engine {
	all := make([]*Pattern, 0, len(user)+len(Builtins))
	all = append(all, user...)
	all = append(all, Builtins...)
	return &Engine{patterns: all}
}

// Parse runs s through the engine's patterns in order and returns the
// first match. ok is false if no pattern matched.
func (e *Engine) Parse(s string) (ParsedRemote, *Pattern, bool) {
	for _, p := range e.patterns {
		if pr, ok := p.Match(s); ok {
			return pr, p, true
		}
	}
	return ParsedRemote{}, nil, false
}
