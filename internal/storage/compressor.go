package storage

import (
	"bytes"
	"context"
	"fmt"

	"github.com/klauspost/compress/zstd"
)

// zstdMagic сигнатура кадра zstd; по ней отличаются документы,
// записанные до включения сжатия.
var zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}

// Compressor сжимает документы zstd. Кодировщик и декодировщик
// создаются один раз и безопасны для параллельного использования
// через EncodeAll/DecodeAll.
type Compressor struct {
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

func NewCompressor() (*Compressor, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("ошибка создания zstd-кодировщика: %w", err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		encoder.Close()
		return nil, fmt.Errorf("ошибка создания zstd-декодировщика: %w", err)
	}
	return &Compressor{encoder: encoder, decoder: decoder}, nil
}

func (c *Compressor) Compress(data []byte) []byte {
	return c.encoder.EncodeAll(data, make([]byte, 0, len(data)/2))
}

// Decompress распаковывает данные. Несжатые данные возвращаются как есть.
func (c *Compressor) Decompress(data []byte) ([]byte, error) {
	if !bytes.HasPrefix(data, zstdMagic) {
		return data, nil
	}
	out, err := c.decoder.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("ошибка распаковки zstd: %w", err)
	}
	return out, nil
}

func (c *Compressor) Close() {
	c.encoder.Close()
	c.decoder.Close()
}

// CompressedStore сжимает документы перед записью во вложенное хранилище
type CompressedStore struct {
	inner      DocumentStore
	compressor *Compressor
}

func NewCompressedStore(inner DocumentStore) (*CompressedStore, error) {
	c, err := NewCompressor()
	if err != nil {
		return nil, err
	}
	return &CompressedStore{inner: inner, compressor: c}, nil
}

func (s *CompressedStore) Put(ctx context.Context, key string, data []byte) error {
	return s.inner.Put(ctx, key, s.compressor.Compress(data))
}

func (s *CompressedStore) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.inner.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	return s.compressor.Decompress(data)
}

func (s *CompressedStore) Delete(ctx context.Context, key string) error {
	return s.inner.Delete(ctx, key)
}

func (s *CompressedStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	return s.inner.Keys(ctx, prefix)
}

func (s *CompressedStore) Close() error {
	s.compressor.Close()
	return s.inner.Close()
}
