package media

import (
	"context"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	stubWordsPerMinute = 150.0

	wavSampleRate    = 24000
	wavNumChannels   = 1
	wavBitsPerSample = 16
	wavHeaderSize    = 44
	wavSubchunkSize  = 16
	wavAudioFormat   = 1
)

// StubGenerator writes placeholder assets without calling any external
// service. Voiceovers are silent WAV files sized to the narration length
// so downstream duration math stays realistic.
type StubGenerator struct{}

func NewStubGenerator() *StubGenerator {
	return &StubGenerator{}
}

func (s *StubGenerator) Generate(ctx context.Context, req Request) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(req.OutputPath), 0755); err != nil {
		return fmt.Errorf("create asset directory: %w", err)
	}

	var data []byte
	switch req.Kind {
	case KindVoiceover:
		data = generateSilentWAV(estimateDuration(req.Prompt))
	case KindImage, KindVideo:
		data = []byte(req.Prompt)
	default:
		return fmt.Errorf("unknown media kind: %s", req.Kind)
	}

	if err := os.WriteFile(req.OutputPath, data, 0644); err != nil {
		return fmt.Errorf("write asset: %w", err)
	}
	return nil
}

func estimateDuration(text string) float64 {
	wordCount := len(strings.Fields(text))
	return float64(wordCount) / stubWordsPerMinute * 60.0
}

func generateSilentWAV(durationSec float64) []byte {
	bytesPerSample := wavBitsPerSample / 8
	numSamples := int(durationSec * float64(wavSampleRate))
	dataSize := numSamples * wavNumChannels * bytesPerSample

	buf := make([]byte, wavHeaderSize+dataSize)
	writeWAVHeader(buf, dataSize)
	return buf
}

func writeWAVHeader(buf []byte, dataSize int) {
	bytesPerSample := wavBitsPerSample / 8
	byteRate := wavSampleRate * wavNumChannels * bytesPerSample
	blockAlign := wavNumChannels * bytesPerSample

	copy(buf[0:4], "RIFF")
	binary.LittleEndian.PutUint32(buf[4:8], uint32(36+dataSize))
	copy(buf[8:12], "WAVE")
	copy(buf[12:16], "fmt ")
	binary.LittleEndian.PutUint32(buf[16:20], wavSubchunkSize)
	binary.LittleEndian.PutUint16(buf[20:22], wavAudioFormat)
	binary.LittleEndian.PutUint16(buf[22:24], wavNumChannels)
	binary.LittleEndian.PutUint32(buf[24:28], wavSampleRate)
	binary.LittleEndian.PutUint32(buf[28:32], uint32(byteRate))
	binary.LittleEndian.PutUint16(buf[32:34], uint16(blockAlign))
	binary.LittleEndian.PutUint16(buf[34:36], wavBitsPerSample)
	copy(buf[36:40], "data")
	binary.LittleEndian.PutUint32(buf[40:44], uint32(dataSize))
}

// WrapPCM frames raw 16-bit mono PCM as a WAV file.
func WrapPCM(pcm []byte) []byte {
	buf := make([]byte, wavHeaderSize+len(pcm))
	writeWAVHeader(buf, len(pcm))
	copy(buf[wavHeaderSize:], pcm)
	return buf
}
