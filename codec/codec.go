package codec

import (
	"fmt"
	"os"

	"github.com/eliben/go-sentencepiece"
)

// NewProcessor loads a SentencePiece model from disk.
func NewProcessor(modelPath string) (*sentencepiece.Processor, error) {
	if modelPath == "" {
		return nil, fmt.Errorf("model path is empty")
	}

	if _, err := os.Stat(modelPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("model file not found at %s", modelPath)
	}

	return sentencepiece.NewProcessorFromPath(modelPath)
}

// Codec converts text into the token ids the embedding model expects.
// It is safe for concurrent use.
type Codec struct {
	processor *sentencepiece.Processor
	bos       int64
	eos       int64
}

func NewCodec(modelPath string) (*Codec, error) {
	proc, err := NewProcessor(modelPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load SentencePiece processor: %w", err)
	}

	info := proc.ModelInfo()
	return &Codec{
		processor: proc,
		bos:       int64(info.BeginningOfSentenceID),
		eos:       int64(info.EndOfSentenceID),
	}, nil
}

// Encode returns the raw piece ids of text, without special tokens.
func (c *Codec) Encode(text string) []int64 {
	tokens := c.processor.Encode(text)

	ids := make([]int64, len(tokens))
	for i, token := range tokens {
		ids[i] = int64(token.ID)
	}
	return ids
}

// EncodeWithSpecial wraps the ids of text in BOS/EOS and caps the result at maxLen.
func (c *Codec) EncodeWithSpecial(text string, maxLen int) []int64 {
	return frame(c.Encode(text), c.bos, c.eos, maxLen)
}

// frame adds bos and eos around ids (a negative id means the model has none)
// and truncates the body so the sequence fits in maxLen with eos kept last.
// The result always holds at least one id.
func frame(ids []int64, bos, eos int64, maxLen int) []int64 {
	var head, tail []int64
	if bos >= 0 {
		head = []int64{bos}
	}
	if eos >= 0 {
		tail = []int64{eos}
	}

	if maxLen > 0 {
		room := max(maxLen-len(head)-len(tail), 0)
		if len(ids) > room {
			ids = ids[:room]
		}
	}

	out := make([]int64, 0, len(head)+len(ids)+len(tail))
	out = append(out, head...)
	out = append(out, ids...)
	out = append(out, tail...)
	if maxLen > 0 && len(out) > maxLen {
		out = out[len(out)-maxLen:]
	}
	if len(out) == 0 {
		out = append(out, 0)
	}
	return out
}
