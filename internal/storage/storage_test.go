package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

func TestLocalFileStorer(t *testing.T) {
	base := t.TempDir()
	lfs := NewLocalFileStorer(base)

	ref, err := lfs.Store(context.Background(), "7", "c-1", "carousel-x-2026-01-01.pdf", []byte("%PDF-1.3"))
	if err != nil {
		t.Fatalf("Store: %v", err)
	}
	if ref != "exports/7/c-1/carousel-x-2026-01-01.pdf" {
		t.Errorf("ref = %q", ref)
	}
	got, err := os.ReadFile(filepath.Join(base, filepath.FromSlash(ref)))
	if err != nil || string(got) != "%PDF-1.3" {
		t.Errorf("stored content = %q, %v", got, err)
	}
}

func TestObjectKeyRejectsTraversal(t *testing.T) {
	tests := []struct{ user, carousel, file string }{
		{"", "c", "f.pdf"},
		{"7", "..", "f.pdf"},
		{"7", "c", "../f.pdf"},
		{"7", `c\d`, "f.pdf"},
	}
	for _, tt := range tests {
		if _, err := objectKey(tt.user, tt.carousel, tt.file); err == nil {
			t.Errorf("objectKey(%q, %q, %q) accepted", tt.user, tt.carousel, tt.file)
		}
	}
}

type fakePutter struct {
	input *s3.PutObjectInput
	body  []byte
	err   error
}

func (f *fakePutter) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.input = in
	f.body, _ = io.ReadAll(in.Body)
	if f.err != nil {
		return nil, f.err
	}
	return &s3.PutObjectOutput{}, nil
}

func TestR2Storer(t *testing.T) {
	putter := &fakePutter{}
	rs := NewR2StorerWithClient(putter, "decks", "https://cdn.example.com/")

	ref, err := rs.Store(context.Background(), "7", "c-1", "deck.pdf", []byte("pdf"))
	if err != nil {
		t.Fatalf("Store: %v", err)
	}
	if ref != "https://cdn.example.com/exports/7/c-1/deck.pdf" {
		t.Errorf("ref = %q", ref)
	}
	if aws.ToString(putter.input.Bucket) != "decks" || aws.ToString(putter.input.ContentType) != "application/pdf" {
		t.Errorf("put input = %+v", putter.input)
	}
	if string(putter.body) != "pdf" {
		t.Errorf("uploaded body = %q", putter.body)
	}

	putter.err = errors.New("network down")
	if _, err := rs.Store(context.Background(), "7", "c-1", "deck.pdf", []byte("pdf")); err == nil {
		t.Error("expected upload error")
	}
}
