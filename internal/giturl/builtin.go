package giturl

// Builtins is the built-in pattern set, evaluated after user patterns, per
// spec.md §4.2: "SSH-style user@host:owner/repo(.git), host:owner/repo,
// owner/repo, and scheme://host/owner/repo(.git)". Generalized from the
// fixed-form normalization in inovacc-clonr/internal/giturl/url.go into
// the Pattern model.
var Builtins = mustBuiltins()

func mustBuiltins() []*Pattern {
	patterns := []struct {
		name    string
		regex   string
		def     ParsedRemote
		infer   bool
		urlTmpl string
	}{
		{
			name:  "ssh-shorthand",
			regex: `^(?P<user>[^@\s/:]+)@(?P<host>[^:/\s]+):(?P<owner>[^/\s]+)/(?P<repo>[^/\s]+?)(?:\.git)?$`,
			def:   ParsedRemote{Scheme: "ssh"},
			infer: true,
		},
		{
			name:  "scheme-url",
			regex: `^(?P<scheme>[a-zA-Z][a-zA-Z0-9+.-]*)://(?:(?P<user>[^@/\s]+)@)?(?P<host>[^/\s]+)/(?P<owner>[^/\s]+)/(?P<repo>[^/\s]+?)(?:\.git)?$`,
			infer: true,
		},
		{
			name:  "host-colon-owner-repo",
			regex: `^(?P<host>[^:/@\s]+):(?P<owner>[^/\s]+)/(?P<repo>[^/\s]+?)(?:\.git)?$`,
			def:   ParsedRemote{Scheme: "ssh"},
			infer: true,
		},
		{
			name:  "owner-repo-shorthand",
			regex: `^(?P<owner>[^/:\s]+)/(?P<repo>[^/\s]+?)(?:\.git)?$`,
			def:   ParsedRemote{Scheme: "https", Host: "github.com"},
			infer: true,
		},
	}

	out := make([]*Pattern, 0, len(patterns))
	for _, p := range patterns {
		pat, err := NewPattern(p.name, p.regex, p.def, p.infer, p.urlTmpl)
		if err != nil {
			// Built-in patterns are constants; a compile failure here is a
			// programming error caught immediately at package init.
			panic(err)
		}
		out = append(out, pat)
	}
	return out
}
