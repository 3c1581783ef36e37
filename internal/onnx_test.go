package internal

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTestTokenizer(t *testing.T) string {
	t.Helper()
	vocab := `{"model":{"vocab":{
		"[UNK]": 0, "[CLS]": 1, "[SEP]": 2,
		"alice": 10, "graph": 11, "##ql": 12, "gateway": 13
	}}}`
	path := filepath.Join(t.TempDir(), "tokenizer.json")
	if err := os.WriteFile(path, []byte(vocab), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestWordPieceTokenizer(t *testing.T) {
	tok, err := loadWordPieceTokenizer(writeTestTokenizer(t))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if tok.clsToken != 1 || tok.sepToken != 2 || tok.unkToken != 0 {
		t.Fatalf("special tokens: cls=%d sep=%d unk=%d", tok.clsToken, tok.sepToken, tok.unkToken)
	}

	cases := []struct {
		text string
		want []int64
	}{
		{"Alice gateway", []int64{10, 13}},
		{"graphql", []int64{11, 12}},
		{"Alice, gateway!", []int64{10, 13}},
		{"", nil},
	}
	for _, tc := range cases {
		got := tok.tokenize(tc.text)
		if len(got) != len(tc.want) {
			t.Errorf("tokenize(%q) = %v, want %v", tc.text, got, tc.want)
			continue
		}
		for i := range got {
			if got[i] != tc.want[i] {
				t.Errorf("tokenize(%q) = %v, want %v", tc.text, got, tc.want)
				break
			}
		}
	}
}

func TestWordPiecesUnknownCharacters(t *testing.T) {
	tok, err := loadWordPieceTokenizer(writeTestTokenizer(t))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	// No prefix of "zzz" is in the vocabulary, so every position falls
	// back to the unknown token.
	got := tok.tokenize("zzz")
	if len(got) == 0 {
		t.Fatal("unknown word must still produce tokens")
	}
	for _, id := range got {
		if id != int64(tok.unkToken) {
			t.Errorf("expected only [UNK] ids, got %v", got)
		}
	}
}

func TestNewONNXEmbedderMissingModel(t *testing.T) {
	if _, err := NewONNXEmbedder(ONNXConfig{}); err == nil {
		t.Fatal("empty model path must fail")
	}
	if _, err := NewONNXEmbedder(ONNXConfig{ModelPath: "/nonexistent/model.onnx"}); err == nil {
		t.Fatal("missing model file must fail")
	}
}

func TestLocateRuntimeLibraryExplicitWins(t *testing.T) {
	if got := locateRuntimeLibrary("/explicit/lib.so"); got != "/explicit/lib.so" {
		t.Errorf("explicit path ignored: %q", got)
	}
}

func TestLocateRuntimeLibraryEnv(t *testing.T) {
	t.Setenv("ONNXRUNTIME_SHARED_LIBRARY_PATH", "/from/env.so")
	if got := locateRuntimeLibrary(""); got != "/from/env.so" {
		t.Errorf("environment path ignored: %q", got)
	}
}
