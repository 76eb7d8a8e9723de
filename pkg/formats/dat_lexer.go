package formats

import (
	"bytes"
	"strconv"

	"github.com/Faultbox/drydock/pkg/encoding"
)

// DATToken is the kind of a DAT lexer token.
type DATToken int

// DAT token kinds.
const (
	TokenEOF DATToken = iota
	TokenEOL
	TokenVertex
	TokenFaces
	TokenTextures
	TokenNormals
	TokenTangents
	TokenEnd
	TokenNVerts
	TokenNFaces
	TokenInteger
	TokenReal
	TokenString
)

var datTokenNames = [...]string{
	TokenEOF:      "end of file",
	TokenEOL:      "end of line",
	TokenVertex:   "VERTEX",
	TokenFaces:    "FACES",
	TokenTextures: "TEXTURES",
	TokenNormals:  "NORMALS",
	TokenTangents: "TANGENTS",
	TokenEnd:      "END",
	TokenNVerts:   "NVERTS",
	TokenNFaces:   "NFACES",
	TokenInteger:  "integer",
	TokenReal:     "number",
	TokenString:   "string",
}

// String returns a human-readable token name.
func (t DATToken) String() string {
	if t >= 0 && int(t) < len(datTokenNames) {
		return datTokenNames[t]
	}
	return "unknown token"
}

// IsSection reports whether t starts a section or ends the file.
func (t DATToken) IsSection() bool {
	switch t {
	case TokenVertex, TokenFaces, TokenTextures, TokenNormals, TokenTangents, TokenEnd:
		return true
	}
	return false
}

var datKeywords = map[string]DATToken{
	"VERTEX":   TokenVertex,
	"FACES":    TokenFaces,
	"TEXTURES": TokenTextures,
	"NORMALS":  TokenNormals,
	"TANGENTS": TokenTangents,
	"END":      TokenEnd,
	"NVERTS":   TokenNVerts,
	"NFACES":   TokenNFaces,
}

// DATLexer splits DAT text into tokens. It always holds a current token;
// NextToken advances to the following one. Spaces, tabs and commas separate
// tokens, "//" and "#" start comments that run to the end of the line, and
// each line break is an EOL token.
//
// The typed readers parse the current token and advance only on success, so
// a caller can report the offending token after a failed read.
type DATLexer struct {
	data []byte
	pos  int
	line int

	tok     DATToken
	text    []byte
	tokLine int
}

// NewDATLexer returns a lexer positioned on the first token of data.
func NewDATLexer(data []byte) *DATLexer {
	l := &DATLexer{data: data, line: 1}
	l.NextToken()
	return l
}

// Token returns the kind of the current token.
func (l *DATLexer) Token() DATToken {
	return l.tok
}

// LineNumber returns the 1-based line of the current token.
func (l *DATLexer) LineNumber() int {
	return l.tokLine
}

// TokenText returns the raw text of the current token.
func (l *DATLexer) TokenText() string {
	switch l.tok {
	case TokenEOF:
		return ""
	case TokenEOL:
		return "\n"
	}
	return string(l.text)
}

// NextToken advances to the next token and returns its kind.
func (l *DATLexer) NextToken() DATToken {
	l.skipBlanks()
	l.tokLine = l.line

	if l.pos >= len(l.data) {
		l.tok, l.text = TokenEOF, nil
		return l.tok
	}

	if l.data[l.pos] == '\n' {
		l.pos++
		l.line++
		l.tok, l.text = TokenEOL, nil
		return l.tok
	}

	start := l.pos
	for l.pos < len(l.data) && !isDATSeparator(l.data[l.pos]) {
		l.pos++
	}
	l.text = l.data[start:l.pos]
	l.tok = classifyDATWord(l.text)
	return l.tok
}

// SkipEOLs advances past any EOL tokens and returns the current token.
func (l *DATLexer) SkipEOLs() DATToken {
	for l.tok == TokenEOL {
		l.NextToken()
	}
	return l.tok
}

// ExpectLiteral advances past the current token if its text is literal.
func (l *DATLexer) ExpectLiteral(literal string) bool {
	if l.tok == TokenEOF || l.tok == TokenEOL || string(l.text) != literal {
		return false
	}
	l.NextToken()
	return true
}

// ReadInteger reads an unsigned integer token.
func (l *DATLexer) ReadInteger() (uint32, bool) {
	if l.tok != TokenInteger {
		return 0, false
	}
	v, err := strconv.ParseUint(string(l.text), 10, 32)
	if err != nil {
		return 0, false
	}
	l.NextToken()
	return uint32(v), true
}

// ReadReal reads an integer or real token as a finite float32.
func (l *DATLexer) ReadReal() (float32, bool) {
	if l.tok != TokenInteger && l.tok != TokenReal {
		return 0, false
	}
	v, err := strconv.ParseFloat(string(l.text), 32)
	if err != nil {
		return 0, false
	}
	l.NextToken()
	return float32(v), true
}

// ReadString reads any non-EOL token as text. Bytes that are not valid
// UTF-8 are decoded as Mac Roman.
func (l *DATLexer) ReadString() (string, bool) {
	if l.tok == TokenEOF || l.tok == TokenEOL {
		return "", false
	}
	s := encoding.Text(l.text)
	l.NextToken()
	return s, true
}

func (l *DATLexer) skipBlanks() {
	for l.pos < len(l.data) {
		c := l.data[l.pos]
		switch {
		case c == ' ' || c == '\t' || c == '\r' || c == ',' || c == 0:
			l.pos++
		case c == '#' || (c == '/' && l.pos+1 < len(l.data) && l.data[l.pos+1] == '/'):
			if end := bytes.IndexByte(l.data[l.pos:], '\n'); end >= 0 {
				l.pos += end
			} else {
				l.pos = len(l.data)
			}
		default:
			return
		}
	}
}

func isDATSeparator(c byte) bool {
	switch c {
	case ' ', '\t', '\r', '\n', ',', 0:
		return true
	}
	return false
}

func classifyDATWord(w []byte) DATToken {
	if tok, ok := datKeywords[string(w)]; ok {
		return tok
	}
	digits := len(w) > 0
	for _, c := range w {
		if c < '0' || c > '9' {
			digits = false
			break
		}
	}
	if digits {
		return TokenInteger
	}
	if _, err := strconv.ParseFloat(string(w), 32); err == nil && isNumeric(w) {
		return TokenReal
	}
	return TokenString
}

// isNumeric rejects words such as "inf" and "nan" that ParseFloat accepts
// but which are texture names in DAT files.
func isNumeric(w []byte) bool {
	for _, c := range w {
		switch {
		case c >= '0' && c <= '9':
		case c == '.' || c == '-' || c == '+' || c == 'e' || c == 'E':
		default:
			return false
		}
	}
	return true
}
