package store

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"

	"github.com/JiajunSong-Bigai/inference-engine/internal/ir"
)

// CodecZstd is the only snapshot codec written today.
const CodecZstd = "zstd"

// marshalPredicate returns the content hash and the stored text of p.
func marshalPredicate(p ir.Predicate) (hash, text string, err error) {
	if err := p.Validate(); err != nil {
		return "", "", fmt.Errorf("marshal predicate: %w", err)
	}
	hash, err = ir.HashPredicate(p)
	if err != nil {
		return "", "", fmt.Errorf("marshal predicate: %w", err)
	}
	return hash, p.String(), nil
}

// unmarshalPredicate parses stored text back into a predicate.
func unmarshalPredicate(text string) (ir.Predicate, error) {
	p, err := ir.ParsePredicate(text)
	if err != nil {
		return ir.Predicate{}, fmt.Errorf("unmarshal predicate: %w", err)
	}
	return p, nil
}

func compress(raw []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := zstd.NewWriter(&buf, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
	if err != nil {
		return nil, fmt.Errorf("compress snapshot: %w", err)
	}
	if _, err := w.Write(raw); err != nil {
		w.Close()
		return nil, fmt.Errorf("compress snapshot: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("compress snapshot: %w", err)
	}
	return buf.Bytes(), nil
}

func decompress(codec string, data []byte) ([]byte, error) {
	if codec != CodecZstd {
		return nil, fmt.Errorf("decompress snapshot: unknown codec %q", codec)
	}
	r, err := zstd.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decompress snapshot: %w", err)
	}
	defer r.Close()
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("decompress snapshot: %w", err)
	}
	return raw, nil
}
