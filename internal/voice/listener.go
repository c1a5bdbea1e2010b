// Package voice provides wake-phrase-triggered speech input backed by a
// local Whisper model.
package voice

import (
	"context"
	"os/exec"
	"regexp"
	"strings"
	"sync"
	"time"

	audiotranscriber "github.com/sklyt/whisper/pkg"

	"github.com/hammamikhairi/deepwork/internal/logger"
)

type listenState int

const (
	stateDormant listenState = iota
	stateListening
)

var defaultWakePhrases = []string{
	"hey timer",
	"hey, timer",
	"a timer",
	"timer",
}

// envAnnotation matches whisper environmental annotations like
// "(keyboard clicking)" or "[laughter]".
var envAnnotation = regexp.MustCompile(`[\(\[][a-zA-Z][a-zA-Z\s_]*[\)\]]`)

// timestampPrefix matches "[00:00:00.000 --> 00:00:02.000]".
var timestampPrefix = regexp.MustCompile(`^\[[0-9:.\s\->]+\]\s*`)

var hallucinations = map[string]bool{
	"...":                     true,
	"you":                     true,
	"thank you.":              true,
	"thank you":               true,
	"thanks for watching!":    true,
	"thank you for watching.": true,
	"bye.":                    true,
	"the end.":                true,
}

// Recorder captures d of audio and returns its transcription.
type Recorder interface {
	Record(ctx context.Context, d time.Duration) string
}

// Option configures the Listener.
type Option func(*Listener)

// WithRecorder replaces the whisper recorder.
func WithRecorder(r Recorder) Option {
	return func(l *Listener) { l.rec = r }
}

// WithWakePhrases overrides the default wake phrases.
func WithWakePhrases(phrases ...string) Option {
	return func(l *Listener) { l.wakePhrases = phrases }
}

// WithDormantDuration sets the length of each wake-phrase probe.
func WithDormantDuration(d time.Duration) Option {
	return func(l *Listener) { l.dormantDuration = d }
}

// WithRecordDuration sets the length of each active-listening chunk.
func WithRecordDuration(d time.Duration) Option {
	return func(l *Listener) { l.recordDuration = d }
}

// WithListenTimeout bounds one active-listening window.
func WithListenTimeout(d time.Duration) Option {
	return func(l *Listener) { l.listenTimeout = d }
}

// Listener waits for a wake phrase, then collects the spoken command and
// delivers it on C.
//
// While dormant it records short probes and discards anything that does
// not contain a wake phrase. A phrase followed by a command in the same
// probe ("hey timer pause") is delivered at once; a bare phrase switches
// to listening, which accumulates chunks until silence or timeout.
type Listener struct {
	log *logger.Logger
	rec Recorder

	wakePhrases     []string
	dormantDuration time.Duration
	recordDuration  time.Duration
	listenTimeout   time.Duration

	mu     sync.Mutex
	state  listenState
	textCh chan string
}

// NewListener creates a listener using whisperBin and modelPath unless a
// Recorder option is given.
func NewListener(whisperBin, modelPath string, log *logger.Logger, opts ...Option) *Listener {
	l := &Listener{
		log:             log,
		wakePhrases:     defaultWakePhrases,
		dormantDuration: 3 * time.Second,
		recordDuration:  time.Second,
		listenTimeout:   8 * time.Second,
		textCh:          make(chan string, 8),
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.rec == nil {
		if _, err := exec.LookPath(whisperBin); err != nil {
			log.Error("whisper binary %q not found in PATH: %v", whisperBin, err)
		}
		l.rec = &whisperRecorder{
			bin:     whisperBin,
			model:   modelPath,
			tempDir: ".deepwork-stt",
			log:     log,
		}
	}
	return l
}

// C returns the channel that receives spoken commands.
func (l *Listener) C() <-chan string {
	return l.textCh
}

// Run blocks until ctx is cancelled. Call it in a goroutine.
func (l *Listener) Run(ctx context.Context) {
	l.log.Info("started (probe=%s, chunk=%s, timeout=%s, wake=%v)",
		l.dormantDuration, l.recordDuration, l.listenTimeout, l.wakePhrases)
	for {
		select {
		case <-ctx.Done():
			l.log.Info("stopped")
			return
		default:
		}
		switch l.getState() {
		case stateDormant:
			l.doDormant(ctx)
		case stateListening:
			l.doListening(ctx)
		}
	}
}

func (l *Listener) getState() listenState {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

func (l *Listener) setState(s listenState) {
	l.mu.Lock()
	l.state = s
	l.mu.Unlock()
}

func (l *Listener) doDormant(ctx context.Context) {
	text := cleanTranscription(l.rec.Record(ctx, l.dormantDuration))
	if text == "" {
		return
	}
	l.log.Debug("dormant: heard %q", text)

	rest, ok := l.afterWakePhrase(text)
	if !ok {
		return
	}
	l.log.Info("wake phrase detected in %q", text)

	if rest = cleanTranscription(rest); rest != "" {
		l.send(ctx, rest)
		return
	}
	l.setState(stateListening)
}

func (l *Listener) doListening(ctx context.Context) {
	defer l.setState(stateDormant)

	const graceEmpty = 3      // silent chunks tolerated before speech
	const postSpeechEmpty = 1 // silent chunks that end a command

	deadline := time.Now().Add(l.listenTimeout)
	var parts []string
	empty := 0
	for time.Now().Before(deadline) {
		if ctx.Err() != nil {
			return
		}
		chunk := cleanTranscription(l.rec.Record(ctx, l.recordDuration))
		if chunk == "" {
			empty++
			limit := graceEmpty
			if len(parts) > 0 {
				limit = postSpeechEmpty
			}
			if empty >= limit {
				break
			}
			continue
		}
		empty = 0
		if chunk = l.stripWakePhrases(chunk); chunk != "" {
			parts = append(parts, chunk)
		}
	}

	combined := strings.TrimSpace(strings.Join(parts, " "))
	if combined == "" {
		l.log.Debug("listening ended with no input")
		return
	}
	l.send(ctx, combined)
}

func (l *Listener) send(ctx context.Context, text string) {
	l.log.Info("heard command: %q", text)
	select {
	case l.textCh <- text:
	case <-ctx.Done():
	}
}

// afterWakePhrase reports whether text contains a wake phrase and returns
// whatever follows it.
func (l *Listener) afterWakePhrase(text string) (string, bool) {
	lower := strings.ToLower(text)
	for _, p := range l.wakePhrases {
		pl := strings.ToLower(p)
		idx := strings.Index(lower, pl)
		if idx < 0 {
			continue
		}
		rest := strings.TrimLeft(text[idx+len(pl):], " ,.!?\t")
		return strings.TrimSpace(rest), true
	}
	return "", false
}

func (l *Listener) stripWakePhrases(text string) string {
	lower := strings.ToLower(text)
	for _, p := range l.wakePhrases {
		lower = strings.ReplaceAll(lower, strings.ToLower(p), "")
	}
	return strings.Trim(collapseSpaces(lower), " ,.!?")
}

// cleanTranscription removes whisper artefacts: timestamps, annotations
// like "[BLANK_AUDIO]" or "(typing)", and the stock phrases whisper
// hallucinates on silence.
func cleanTranscription(s string) string {
	s = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ").Replace(s)
	s = strings.TrimSpace(s)
	s = timestampPrefix.ReplaceAllString(s, "")
	s = envAnnotation.ReplaceAllString(s, "")
	s = strings.TrimSpace(collapseSpaces(s))
	if hallucinations[strings.ToLower(s)] {
		return ""
	}
	if strings.Trim(s, " ,.!?-") == "" {
		return ""
	}
	return s
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// whisperRecorder records one chunk through whisper-cli.
type whisperRecorder struct {
	bin     string
	model   string
	tempDir string
	log     *logger.Logger
}

func (w *whisperRecorder) Record(ctx context.Context, d time.Duration) string {
	var (
		result string
		wg     sync.WaitGroup
	)
	wg.Add(1)
	callback := func(text string) {
		result = text
		wg.Done()
	}

	verbose := w.log.GetLevel() >= logger.LevelVerbose
	t, err := audiotranscriber.NewTranscriber(w.bin, w.model, w.tempDir, "wav", callback, verbose)
	if err != nil {
		w.log.Error("transcriber init failed: %v", err)
		sleepCtx(ctx, 2*time.Second)
		return ""
	}
	if err := t.Start(); err != nil {
		w.log.Error("recording start failed: %v", err)
		sleepCtx(ctx, 2*time.Second)
		return ""
	}

	select {
	case <-time.After(d):
	case <-ctx.Done():
	}
	t.Stop()
	wg.Wait()
	if ctx.Err() != nil {
		return ""
	}
	return result
}

func sleepCtx(ctx context.Context, d time.Duration) {
	select {
	case <-time.After(d):
	case <-ctx.Done():
	}
}
