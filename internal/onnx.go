package internal

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

var _ Embedder = (*ONNXEmbedder)(nil)

type ONNXConfig struct {
	ModelPath     string
	TokenizerPath string
	Dimension     int
	LibraryPath   string
}

// ONNXEmbedder runs a local sentence-encoder (MiniLM-style) through
// ONNX Runtime. The session is not reentrant, so Embed serializes
// behind a mutex.
type ONNXEmbedder struct {
	mu        sync.Mutex
	session   *ort.DynamicAdvancedSession
	tokenizer *wordPieceTokenizer
	dimension int
}

func NewONNXEmbedder(cfg ONNXConfig) (*ONNXEmbedder, error) {
	if cfg.ModelPath == "" {
		return nil, fmt.Errorf("model path not configured")
	}
	if cfg.Dimension == 0 {
		cfg.Dimension = 384
	}

	if _, err := os.Stat(cfg.ModelPath); err != nil {
		return nil, fmt.Errorf("model file: %w", err)
	}

	if lib := locateRuntimeLibrary(cfg.LibraryPath); lib != "" {
		ort.SetSharedLibraryPath(lib)
	}
	if err := ort.InitializeEnvironment(); err != nil {
		return nil, fmt.Errorf("init onnxruntime: %w", err)
	}

	tokenizer, err := loadWordPieceTokenizer(cfg.TokenizerPath)
	if err != nil {
		return nil, fmt.Errorf("load tokenizer: %w", err)
	}

	session, err := ort.NewDynamicAdvancedSession(cfg.ModelPath,
		[]string{"input_ids", "attention_mask", "token_type_ids"},
		[]string{"last_hidden_state"},
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	return &ONNXEmbedder{
		session:   session,
		tokenizer: tokenizer,
		dimension: cfg.Dimension,
	}, nil
}

const maxSequenceLen = 128

func (e *ONNXEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	tokens := e.tokenizer.tokenize(text)

	inputIDs := make([]int64, maxSequenceLen)
	attentionMask := make([]int64, maxSequenceLen)
	tokenTypeIDs := make([]int64, maxSequenceLen)

	inputIDs[0] = int64(e.tokenizer.clsToken)
	attentionMask[0] = 1

	n := len(tokens)
	if n > maxSequenceLen-2 {
		n = maxSequenceLen - 2
	}
	for i := 0; i < n; i++ {
		inputIDs[i+1] = tokens[i]
		attentionMask[i+1] = 1
	}
	inputIDs[n+1] = int64(e.tokenizer.sepToken)
	attentionMask[n+1] = 1

	shape := ort.NewShape(1, int64(maxSequenceLen))
	idsTensor, err := ort.NewTensor(shape, inputIDs)
	if err != nil {
		return nil, fmt.Errorf("input_ids tensor: %w", err)
	}
	defer idsTensor.Destroy()

	maskTensor, err := ort.NewTensor(shape, attentionMask)
	if err != nil {
		return nil, fmt.Errorf("attention_mask tensor: %w", err)
	}
	defer maskTensor.Destroy()

	typeTensor, err := ort.NewTensor(shape, tokenTypeIDs)
	if err != nil {
		return nil, fmt.Errorf("token_type_ids tensor: %w", err)
	}
	defer typeTensor.Destroy()

	outputs := []ort.Value{nil}
	if err := e.session.Run([]ort.Value{idsTensor, maskTensor, typeTensor}, outputs); err != nil {
		return nil, fmt.Errorf("run inference: %w", err)
	}
	defer func() {
		for _, out := range outputs {
			if out != nil {
				out.Destroy()
			}
		}
	}()

	tensor, ok := outputs[0].(*ort.Tensor[float32])
	if !ok {
		return nil, fmt.Errorf("unexpected output tensor type")
	}

	vec, err := poolOutput(tensor, attentionMask, e.dimension)
	if err != nil {
		return nil, err
	}

	return l2Normalize(vec), nil
}

// poolOutput handles both pre-pooled [1, dim] outputs and raw
// [1, seq, dim] hidden states, mean-pooling the latter over attended
// positions.
func poolOutput(tensor *ort.Tensor[float32], mask []int64, dim int) ([]float32, error) {
	data := tensor.GetData()
	shape := tensor.GetShape()

	switch len(shape) {
	case 2:
		if len(data) < dim {
			return nil, fmt.Errorf("output dimension %d, expected %d", len(data), dim)
		}
		vec := make([]float32, dim)
		copy(vec, data[:dim])
		return vec, nil

	case 3:
		seqLen, hidden := int(shape[1]), int(shape[2])
		if hidden != dim {
			return nil, fmt.Errorf("hidden size %d, expected %d", hidden, dim)
		}

		vec := make([]float32, dim)
		attended := 0
		for i := 0; i < seqLen && i < len(mask); i++ {
			if mask[i] == 0 {
				continue
			}
			attended++
			offset := i * hidden
			for j := 0; j < dim; j++ {
				vec[j] += data[offset+j]
			}
		}
		if attended == 0 {
			return vec, nil
		}
		for j := range vec {
			vec[j] /= float32(attended)
		}
		return vec, nil
	}

	return nil, fmt.Errorf("unexpected output shape %v", shape)
}

func (e *ONNXEmbedder) Dimension() int {
	return e.dimension
}

func (e *ONNXEmbedder) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.session != nil {
		if err := e.session.Destroy(); err != nil {
			return err
		}
		e.session = nil
	}
	return nil
}

// locateRuntimeLibrary probes for a usable libonnxruntime, preferring
// an explicit path, then the environment, then common install
// locations.
func locateRuntimeLibrary(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if env := os.Getenv("ONNXRUNTIME_SHARED_LIBRARY_PATH"); env != "" {
		return env
	}

	home, _ := os.UserHomeDir()
	candidates := []string{
		"/usr/lib/libonnxruntime.so",
		"/usr/local/lib/libonnxruntime.so",
		"/usr/local/lib/libonnxruntime.dylib",
		"/opt/homebrew/lib/libonnxruntime.dylib",
	}
	if home != "" {
		candidates = append(candidates,
			home+"/.local/lib/onnxruntime/libonnxruntime.so")
	}

	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return c
		}
	}
	return ""
}

// wordPieceTokenizer is a minimal BERT-style WordPiece tokenizer
// backed by a HuggingFace tokenizer.json vocabulary.
type wordPieceTokenizer struct {
	vocab    map[string]int
	clsToken int
	sepToken int
	unkToken int
}

func loadWordPieceTokenizer(path string) (*wordPieceTokenizer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var file struct {
		Model struct {
			Vocab map[string]int `json:"vocab"`
		} `json:"model"`
	}
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse tokenizer: %w", err)
	}

	t := &wordPieceTokenizer{
		vocab:    file.Model.Vocab,
		clsToken: 101,
		sepToken: 102,
		unkToken: 100,
	}
	if id, ok := t.vocab["[CLS]"]; ok {
		t.clsToken = id
	}
	if id, ok := t.vocab["[SEP]"]; ok {
		t.sepToken = id
	}
	if id, ok := t.vocab["[UNK]"]; ok {
		t.unkToken = id
	}
	return t, nil
}

func (t *wordPieceTokenizer) tokenize(text string) []int64 {
	var tokens []int64
	for _, word := range strings.Fields(strings.ToLower(text)) {
		word = strings.Trim(word, ".,!?;:\"'()[]")
		if word == "" {
			continue
		}
		if id, ok := t.vocab[word]; ok {
			tokens = append(tokens, int64(id))
			continue
		}
		for _, piece := range t.wordPieces(word) {
			if id, ok := t.vocab[piece]; ok {
				tokens = append(tokens, int64(id))
			} else {
				tokens = append(tokens, int64(t.unkToken))
			}
		}
	}
	return tokens
}

// wordPieces greedily splits a word into the longest matching vocab
// prefixes, using the ## continuation convention.
func (t *wordPieceTokenizer) wordPieces(word string) []string {
	var pieces []string
	start := 0
	for start < len(word) {
		end := len(word)
		matched := false
		for end > start {
			piece := word[start:end]
			if start > 0 {
				piece = "##" + piece
			}
			if _, ok := t.vocab[piece]; ok {
				pieces = append(pieces, piece)
				start = end
				matched = true
				break
			}
			end--
		}
		if !matched {
			pieces = append(pieces, "[UNK]")
			start++
		}
	}
	return pieces
}
