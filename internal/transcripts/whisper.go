package transcripts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	langpkg "dialogdetective/internal/language"
	"dialogdetective/internal/services"
)

// WhisperConfig configures the whisper.cpp transcription source.
type WhisperConfig struct {
	FFmpegBinary  string
	WhisperBinary string
	ModelPath     string
	Language      string
	Timeout       time.Duration
}

// WhisperSource transcribes videos by extracting a mono 16kHz WAV with
// ffmpeg and running the whisper.cpp CLI over it.
type WhisperSource struct {
	cfg           WhisperConfig
	commandRunner func(ctx context.Context, name string, args ...string) error
}

var _ Source = (*WhisperSource)(nil)

// NewWhisperSource creates a whisper-backed transcript source.
func NewWhisperSource(cfg WhisperConfig) (*WhisperSource, error) {
	if cfg.FFmpegBinary == "" {
		cfg.FFmpegBinary = "ffmpeg"
	}
	if cfg.WhisperBinary == "" {
		cfg.WhisperBinary = "whisper-cli"
	}
	if cfg.ModelPath == "" {
		return nil, errors.New("whisper model path required")
	}
	return &WhisperSource{cfg: cfg}, nil
}

// WithCommandRunner sets a custom command runner (for testing).
func (s *WhisperSource) WithCommandRunner(runner func(ctx context.Context, name string, args ...string) error) {
	s.commandRunner = runner
}

// Transcribe extracts the first audio stream of the video and transcribes
// it. Intermediate files live in a temp dir removed before return.
func (s *WhisperSource) Transcribe(ctx context.Context, videoPath string) (Transcript, error) {
	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	workDir, err := os.MkdirTemp("", "dialogdetective-whisper-*")
	if err != nil {
		return Transcript{}, fmt.Errorf("create work dir: %w", err)
	}
	defer os.RemoveAll(workDir)

	wavPath := filepath.Join(workDir, "audio.wav")
	if err := s.run(ctx, s.cfg.FFmpegBinary, buildFFmpegArgs(videoPath, wavPath)...); err != nil {
		return Transcript{}, services.Wrap(services.ErrExternalTool, "transcribe", "ffmpeg", "audio extraction failed", err)
	}

	outPrefix := filepath.Join(workDir, "transcript")
	if err := s.run(ctx, s.cfg.WhisperBinary, s.buildWhisperArgs(wavPath, outPrefix)...); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return Transcript{}, services.Wrap(services.ErrTimeout, "transcribe", "whisper", "transcription timed out", err)
		}
		return Transcript{}, services.Wrap(services.ErrExternalTool, "transcribe", "whisper", "transcription failed", err)
	}

	transcript, err := loadWhisperOutput(outPrefix + ".json")
	if err != nil {
		return Transcript{}, services.Wrap(services.ErrExternalTool, "transcribe", "whisper", "unreadable output", err)
	}
	if transcript.Language == "" {
		transcript.Language = langpkg.ToISO2(s.cfg.Language)
	}
	return transcript, nil
}

func (s *WhisperSource) run(ctx context.Context, name string, args ...string) error {
	if s.commandRunner != nil {
		return s.commandRunner(ctx, name, args...)
	}
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(output)))
	}
	return nil
}

func buildFFmpegArgs(source, dest string) []string {
	return []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-i", source,
		"-map", "0:a:0",
		"-vn",
		"-sn",
		"-dn",
		"-ac", "1",
		"-ar", "16000",
		"-c:a", "pcm_s16le",
		dest,
	}
}

func (s *WhisperSource) buildWhisperArgs(wavPath, outPrefix string) []string {
	args := []string{
		"-m", s.cfg.ModelPath,
		"-f", wavPath,
		"--output-json",
		"--output-file", outPrefix,
		"--no-prints",
	}
	if lang := langpkg.ToISO2(s.cfg.Language); lang != "" {
		args = append(args, "-l", lang)
	}
	return args
}

type whisperOutput struct {
	Result struct {
		Language string `json:"language"`
	} `json:"result"`
	Transcription []struct {
		Text    string `json:"text"`
		Offsets struct {
			From int64 `json:"from"`
			To   int64 `json:"to"`
		} `json:"offsets"`
	} `json:"transcription"`
}

func loadWhisperOutput(path string) (Transcript, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Transcript{}, fmt.Errorf("read whisper output: %w", err)
	}
	var payload whisperOutput
	if err := json.Unmarshal(data, &payload); err != nil {
		return Transcript{}, fmt.Errorf("decode whisper output: %w", err)
	}

	var builder strings.Builder
	var lastMillis int64
	for _, segment := range payload.Transcription {
		text := strings.TrimSpace(segment.Text)
		if text == "" {
			continue
		}
		if builder.Len() > 0 {
			builder.WriteByte(' ')
		}
		builder.WriteString(text)
		if segment.Offsets.To > lastMillis {
			lastMillis = segment.Offsets.To
		}
	}
	return Transcript{
		Text:     builder.String(),
		Language: payload.Result.Language,
		Duration: time.Duration(lastMillis) * time.Millisecond,
	}, nil
}
