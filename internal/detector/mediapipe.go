package detector

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/rs/zerolog"
	"gocv.io/x/gocv"
)

// ErrScriptNotFound is returned when the MediaPipe service script cannot be located.
var ErrScriptNotFound = errors.New("mediapipe_service.py not found")

// MediaPipeDetector implements Detector using a Python MediaPipe subprocess.
//
// Frames are written to the subprocess stdin as a 4-byte big-endian length
// followed by a JPEG image. The subprocess answers each frame with one JSON line
// holding normalized landmarks per hand.
type MediaPipeDetector struct {
	config  Config
	script  string
	python  string
	log     zerolog.Logger
	cmd     *exec.Cmd
	stdin   io.WriteCloser
	stdout  *bufio.Reader
	mu      sync.Mutex
	started bool
}

// NewMediaPipeDetector creates a new MediaPipe detector.
// The Python process is started lazily on first detection.
func NewMediaPipeDetector(config Config, log zerolog.Logger) (*MediaPipeDetector, error) {
	script := config.Script
	if script == "" {
		script = findMediaPipeScript()
	}
	if script == "" {
		return nil, ErrScriptNotFound
	}
	if _, err := os.Stat(script); err != nil {
		return nil, fmt.Errorf("mediapipe script: %w", err)
	}

	python := config.Python
	if python == "" {
		python = findVenvPython()
	}
	if python == "" {
		python = "python3"
	}

	return &MediaPipeDetector{
		config: config,
		script: script,
		python: python,
		log:    log.With().Str("component", "mediapipe").Logger(),
	}, nil
}

// Detect analyzes a frame and returns detected hands in frame pixel coordinates.
func (d *MediaPipeDetector) Detect(frame *gocv.Mat) ([]Hand, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if frame == nil || frame.Empty() {
		return nil, nil
	}

	if err := d.ensureStarted(); err != nil {
		return nil, err
	}

	buf, err := gocv.IMEncode(".jpg", *frame)
	if err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	defer buf.Close()

	data := buf.GetBytes()

	length := make([]byte, 4)
	binary.BigEndian.PutUint32(length, uint32(len(data)))

	if _, err := d.stdin.Write(length); err != nil {
		return nil, fmt.Errorf("write length: %w", err)
	}
	if _, err := d.stdin.Write(data); err != nil {
		return nil, fmt.Errorf("write data: %w", err)
	}

	line, err := d.stdout.ReadString('\n')
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	return decodeResponse([]byte(line), frame.Cols(), frame.Rows(), d.config.FlipType)
}

// Close shuts down the Python process.
func (d *MediaPipeDetector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.shutdown()
}

func (d *MediaPipeDetector) ensureStarted() error {
	if d.started {
		return nil
	}

	d.cmd = exec.Command(d.python, append([]string{d.script}, d.args()...)...)

	stdin, err := d.cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("create stdin pipe: %w", err)
	}

	stdout, err := d.cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("create stdout pipe: %w", err)
	}

	d.cmd.Stderr = os.Stderr

	if err := d.cmd.Start(); err != nil {
		return fmt.Errorf("start mediapipe service: %w", err)
	}

	d.stdin = stdin
	d.stdout = bufio.NewReader(stdout)
	d.started = true

	d.log.Info().Str("python", d.python).Str("script", d.script).Msg("mediapipe service started")
	return nil
}

// args renders the detector configuration as service command-line flags.
func (d *MediaPipeDetector) args() []string {
	args := []string{
		"--max-hands", strconv.Itoa(d.config.MaxHands),
		"--min-detection-confidence", strconv.FormatFloat(d.config.MinConfidence, 'f', -1, 64),
		"--min-tracking-confidence", strconv.FormatFloat(d.config.MinTrackingConf, 'f', -1, 64),
	}
	if d.config.StaticImageMode {
		args = append(args, "--static-image-mode")
	}
	return args
}

func (d *MediaPipeDetector) shutdown() error {
	if !d.started {
		return nil
	}

	if d.stdin != nil {
		d.stdin.Close()
	}

	err := d.cmd.Wait()
	d.started = false
	d.cmd = nil
	d.stdin = nil
	d.stdout = nil

	return err
}

func findMediaPipeScript() string {
	execPath, err := os.Executable()
	var execDir string
	if err == nil {
		execDir = filepath.Dir(execPath)
	}

	candidates := []string{
		"scripts/mediapipe_service.py",
		"../scripts/mediapipe_service.py",
		filepath.Join(execDir, "scripts/mediapipe_service.py"),
		filepath.Join(os.Getenv("HOME"), ".hcs/scripts/mediapipe_service.py"),
	}

	return firstExisting(candidates)
}

// findVenvPython looks for a Python interpreter in a virtual environment.
func findVenvPython() string {
	execPath, err := os.Executable()
	if err != nil {
		return ""
	}
	execDir := filepath.Dir(execPath)

	candidates := []string{
		"venv/bin/python",
		"../venv/bin/python",
		filepath.Join(execDir, "venv/bin/python"),
		filepath.Join(os.Getenv("HOME"), ".hcs/venv/bin/python"),
	}

	return firstExisting(candidates)
}

func firstExisting(paths []string) string {
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if abs, err := filepath.Abs(path); err == nil {
				return abs
			}
			return path
		}
	}
	return ""
}

// jsonHand is one hand as reported by the Python service, in normalized coordinates.
type jsonHand struct {
	Points     []Point3D `json:"points"`
	Handedness string    `json:"handedness"`
	Score      float64   `json:"score"`
}

// decodeResponse parses one service response line into Hands for a width x height frame.
func decodeResponse(line []byte, width, height int, flip bool) ([]Hand, error) {
	var response struct {
		Hands []jsonHand `json:"hands"`
	}
	if err := json.Unmarshal(line, &response); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	hands := make([]Hand, 0, len(response.Hands))
	for i, h := range response.Hands {
		hand, err := NewHand(h.Points, width, height, h.Handedness, h.Score, flip)
		if err != nil {
			return nil, fmt.Errorf("hand %d: %w", i, err)
		}
		hands = append(hands, hand)
	}

	return hands, nil
}
