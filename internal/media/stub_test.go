package media

import (
	"context"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
)

func TestStubGeneratorVoiceover(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "voiceovers", "scene_000.wav")

	gen := NewStubGenerator()
	err := gen.Generate(context.Background(), Request{
		Kind:       KindVoiceover,
		Prompt:     "ten words of narration to size the silent audio file",
		OutputPath: out,
	})
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if len(data) <= wavHeaderSize {
		t.Fatalf("wav has no samples, len = %d", len(data))
	}
	if string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		t.Error("output is not a WAV file")
	}

	dataSize := binary.LittleEndian.Uint32(data[40:44])
	if int(dataSize) != len(data)-wavHeaderSize {
		t.Errorf("data chunk size = %d, want %d", dataSize, len(data)-wavHeaderSize)
	}
}

func TestStubGeneratorImageAndVideo(t *testing.T) {
	dir := t.TempDir()
	gen := NewStubGenerator()

	for _, kind := range []Kind{KindImage, KindVideo} {
		out := filepath.Join(dir, string(kind))
		err := gen.Generate(context.Background(), Request{Kind: kind, Prompt: "p", OutputPath: out})
		if err != nil {
			t.Fatalf("Generate(%s) error: %v", kind, err)
		}
		if _, err := os.Stat(out); err != nil {
			t.Errorf("Generate(%s) did not write output: %v", kind, err)
		}
	}
}

func TestStubGeneratorUnknownKind(t *testing.T) {
	gen := NewStubGenerator()
	err := gen.Generate(context.Background(), Request{Kind: "hologram", OutputPath: filepath.Join(t.TempDir(), "x")})
	if err == nil {
		t.Error("expected error for unknown kind")
	}
}

func TestStubGeneratorCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	gen := NewStubGenerator()
	err := gen.Generate(ctx, Request{Kind: KindImage, Prompt: "p", OutputPath: filepath.Join(t.TempDir(), "x")})
	if err == nil {
		t.Error("expected error for cancelled context")
	}
}

func TestWrapPCM(t *testing.T) {
	pcm := []byte{1, 2, 3, 4}
	wav := WrapPCM(pcm)

	if len(wav) != wavHeaderSize+len(pcm) {
		t.Fatalf("len = %d, want %d", len(wav), wavHeaderSize+len(pcm))
	}
	if string(wav[0:4]) != "RIFF" {
		t.Error("missing RIFF header")
	}
	if got := binary.LittleEndian.Uint32(wav[40:44]); got != uint32(len(pcm)) {
		t.Errorf("data size = %d, want %d", got, len(pcm))
	}
}
