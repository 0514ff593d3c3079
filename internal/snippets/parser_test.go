package snippets

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const loginSource = `import { models } from '../models'

// vuln-code-snippet start loginAdminChallenge loginBenderChallenge
module.exports = function login () {
  function afterLogin (user, res, next) { // vuln-code-snippet neutral-line loginAdminChallenge
    // vuln-code-snippet hide-start
    logger.debug('login')
    // vuln-code-snippet hide-end
    next()
  }

  return (req, res, next) => {
    models.sequelize.query(` + "`SELECT * FROM Users WHERE email = '${req.body.email}'`" + `) // vuln-code-snippet vuln-line loginAdminChallenge loginBenderChallenge
    verifyPreLoginChallenges(req) // vuln-code-snippet hide-line
      .then((authenticatedUser) => { // vuln-code-snippet neutral-line loginBenderChallenge
        afterLogin(authenticatedUser, res, next)
      })
  }
// vuln-code-snippet end loginAdminChallenge loginBenderChallenge
}
`

func TestParseFile_MultipleKeys(t *testing.T) {
	got, err := ParseFile("routes/login.ts", []byte(loginSource))
	require.NoError(t, err)
	require.Len(t, got, 2)

	wantSnippet := "module.exports = function login () {\n" +
		"  function afterLogin (user, res, next) {\n" +
		"    next()\n" +
		"  }\n" +
		"\n" +
		"  return (req, res, next) => {\n" +
		"    models.sequelize.query(`SELECT * FROM Users WHERE email = '${req.body.email}'`)\n" +
		"      .then((authenticatedUser) => {\n" +
		"        afterLogin(authenticatedUser, res, next)\n" +
		"      })\n" +
		"  }"

	want := []*Challenge{
		{
			Key:          "loginAdminChallenge",
			Snippet:      wantSnippet,
			VulnLines:    []int{7},
			NeutralLines: []int{2},
			File:         "routes/login.ts",
		},
		{
			Key:          "loginBenderChallenge",
			Snippet:      wantSnippet,
			VulnLines:    []int{7},
			NeutralLines: []int{8},
			File:         "routes/login.ts",
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ParseFile mismatch (-want +got):\n%s", diff)
	}
}

func TestParseFile_HashComments(t *testing.T) {
	src := "# vuln-code-snippet start yamlChallenge\n" +
		"key: value\n" +
		"secret: hunter2 # vuln-code-snippet vuln-line yamlChallenge\n" +
		"# vuln-code-snippet end yamlChallenge\n"

	got, err := ParseFile("config.yml", []byte(src))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "key: value\nsecret: hunter2", got[0].Snippet)
	assert.Equal(t, []int{2}, got[0].VulnLines)
	assert.Equal(t, []int{}, got[0].NeutralLines)
}

func TestParseFile_HTMLComments(t *testing.T) {
	src := "<!-- vuln-code-snippet start xssChallenge -->\r\n" +
		"<div>\r\n" +
		"  <span [innerHTML]=\"text\"></span> <!-- vuln-code-snippet vuln-line xssChallenge -->\r\n" +
		"</div>\r\n" +
		"<!-- vuln-code-snippet end xssChallenge -->\r\n"

	got, err := ParseFile("search.html", []byte(src))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "<div>\n  <span [innerHTML]=\"text\"></span>\n</div>", got[0].Snippet)
	assert.Equal(t, []int{2}, got[0].VulnLines)
}

func TestParseFile_NestedSnippets(t *testing.T) {
	src := "// vuln-code-snippet start outer\n" +
		"a()\n" +
		"// vuln-code-snippet start inner\n" +
		"b() // vuln-code-snippet vuln-line inner outer\n" +
		"// vuln-code-snippet end inner\n" +
		"c() // vuln-code-snippet neutral-line outer\n" +
		"// vuln-code-snippet end outer\n"

	got, err := ParseFile("nested.ts", []byte(src))
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "outer", got[0].Key)
	assert.Equal(t, "a()\nb()\nc()", got[0].Snippet)
	assert.Equal(t, []int{2}, got[0].VulnLines)
	assert.Equal(t, []int{3}, got[0].NeutralLines)

	assert.Equal(t, "inner", got[1].Key)
	assert.Equal(t, "b()", got[1].Snippet)
	assert.Equal(t, []int{1}, got[1].VulnLines)
}

func TestParseFile_BrokenBoundary(t *testing.T) {
	src := "// vuln-code-snippet start lonelyChallenge\nfoo()\n"

	_, err := ParseFile("broken.ts", []byte(src))
	require.Error(t, err)
	assert.True(t, IsBrokenBoundary(err))
	assert.Contains(t, err.Error(), "lonelyChallenge")
	assert.Contains(t, err.Error(), "broken.ts")
}

func TestParseFile_EndBeforeStart(t *testing.T) {
	src := "// vuln-code-snippet end k\n// vuln-code-snippet start k\nfoo()\n"

	_, err := ParseFile("order.ts", []byte(src))
	assert.True(t, IsBrokenBoundary(err))
}

func TestParseFile_NoMarkers(t *testing.T) {
	got, err := ParseFile("plain.ts", []byte("const a = 1\n"))
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.False(t, HasMarkers([]byte("const a = 1\n")))
	assert.True(t, HasMarkers([]byte(loginSource)))
}

func TestStripComment(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  foo() // ", "  foo()"},
		{"// ", ""},
		{"bar: 1 # ", "bar: 1"},
		{"<b></b> <!-- ", "<b></b>"},
		{"x = 1 /* ", "x = 1"},
		{"plain ", "plain"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, stripComment(tt.in), "stripComment(%q)", tt.in)
	}
}
