package formats

import "testing"

func TestDATLexer_TokenStream(t *testing.T) {
	input := "NVERTS 3 // count\n# comment line\nVERTEX\n1.5, -2,\t3e2\nhull.png END\n"
	want := []struct {
		tok  DATToken
		text string
		line int
	}{
		{TokenNVerts, "NVERTS", 1},
		{TokenInteger, "3", 1},
		{TokenEOL, "\n", 1},
		{TokenEOL, "\n", 2},
		{TokenVertex, "VERTEX", 3},
		{TokenEOL, "\n", 3},
		{TokenReal, "1.5", 4},
		{TokenReal, "-2", 4},
		{TokenReal, "3e2", 4},
		{TokenEOL, "\n", 4},
		{TokenString, "hull.png", 5},
		{TokenEnd, "END", 5},
		{TokenEOL, "\n", 5},
		{TokenEOF, "", 6},
	}

	lex := NewDATLexer([]byte(input))
	for i, w := range want {
		if lex.Token() != w.tok || lex.TokenText() != w.text || lex.LineNumber() != w.line {
			t.Fatalf("token %d = %v %q line %d, want %v %q line %d",
				i, lex.Token(), lex.TokenText(), lex.LineNumber(), w.tok, w.text, w.line)
		}
		lex.NextToken()
	}
	if lex.NextToken() != TokenEOF {
		t.Error("expected EOF to repeat")
	}
}

func TestDATLexer_TypedReaders(t *testing.T) {
	lex := NewDATLexer([]byte("NFACES 12 0.5 -7 name"))

	if !lex.ExpectLiteral("NFACES") {
		t.Fatal("ExpectLiteral(NFACES) = false")
	}
	if lex.ExpectLiteral("NFACES") {
		t.Fatal("ExpectLiteral matched the wrong token")
	}
	if n, ok := lex.ReadInteger(); !ok || n != 12 {
		t.Fatalf("ReadInteger() = %d, %v", n, ok)
	}

	// A real is not an integer and must not be consumed.
	if _, ok := lex.ReadInteger(); ok {
		t.Fatal("ReadInteger accepted a real")
	}
	if f, ok := lex.ReadReal(); !ok || f != 0.5 {
		t.Fatalf("ReadReal() = %v, %v", f, ok)
	}
	if _, ok := lex.ReadInteger(); ok {
		t.Fatal("ReadInteger accepted a negative number")
	}
	if f, ok := lex.ReadReal(); !ok || f != -7 {
		t.Fatalf("ReadReal() = %v, %v", f, ok)
	}
	if _, ok := lex.ReadReal(); ok {
		t.Fatal("ReadReal accepted a string")
	}
	if s, ok := lex.ReadString(); !ok || s != "name" {
		t.Fatalf("ReadString() = %q, %v", s, ok)
	}
	if _, ok := lex.ReadString(); ok {
		t.Fatal("ReadString succeeded at EOF")
	}
}

func TestDATLexer_IntegerAcceptedAsReal(t *testing.T) {
	lex := NewDATLexer([]byte("4"))
	if f, ok := lex.ReadReal(); !ok || f != 4 {
		t.Errorf("ReadReal() = %v, %v", f, ok)
	}
}

func TestDATLexer_Classification(t *testing.T) {
	tests := []struct {
		word string
		want DATToken
	}{
		{"42", TokenInteger},
		{"4.2", TokenReal},
		{"-1", TokenReal},
		{"1e-3", TokenReal},
		{"inf", TokenString},
		{"nan", TokenString},
		{"1e999", TokenString},
		{"TEXTURES", TokenTextures},
		{"textures", TokenString},
		{"NORMALS", TokenNormals},
		{"TANGENTS", TokenTangents},
	}

	for _, tt := range tests {
		if got := NewDATLexer([]byte(tt.word)).Token(); got != tt.want {
			t.Errorf("%q classified as %v, want %v", tt.word, got, tt.want)
		}
	}
}

func TestDATLexer_MacRomanString(t *testing.T) {
	lex := NewDATLexer([]byte{'c', 'a', 'f', 0x8E, '.', 'p', 'n', 'g'})
	s, ok := lex.ReadString()
	if !ok || s != "café.png" {
		t.Errorf("ReadString() = %q, %v", s, ok)
	}
}

func TestDATLexer_CRLF(t *testing.T) {
	lex := NewDATLexer([]byte("END\r\nEND"))
	if lex.NextToken() != TokenEOL {
		t.Fatalf("got %v, want EOL", lex.Token())
	}
	if lex.NextToken() != TokenEnd || lex.LineNumber() != 2 {
		t.Errorf("got %v on line %d", lex.Token(), lex.LineNumber())
	}
}
