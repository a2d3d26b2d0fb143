package logx

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"runtime"
	"strconv"
	"strings"
	"sync"
)

type jsonhandler struct {
	Out    io.Writer
	Err    io.Writer
	Option *slog.HandlerOptions
	attrs  []slog.Attr
	group  string
	mu     *sync.Mutex
}

var _ slog.Handler = &jsonhandler{}

type Option func(*jsonhandler)

// WithErrorWriter sends error records to w instead of the main writer.
func WithErrorWriter(w io.Writer) Option {
	return func(h *jsonhandler) {
		h.Err = w
	}
}

func WithLevel(level slog.Leveler) Option {
	return func(h *jsonhandler) {
		h.Option.Level = level
	}
}

func WithAddSource(add bool) Option {
	return func(h *jsonhandler) {
		h.Option.AddSource = add
	}
}

func WithReplaceAttr(fn func(groups []string, a slog.Attr) slog.Attr) Option {
	return func(h *jsonhandler) {
		h.Option.ReplaceAttr = fn
	}
}

// New returns a handler writing one JSON object per record to o.
func New(o io.Writer, opts ...Option) *jsonhandler {
	if o == nil {
		o = io.Discard
	}
	var s jsonhandler
	s.Option = &slog.HandlerOptions{}
	s.Out = o
	s.mu = new(sync.Mutex)
	for _, v := range opts {
		v(&s)
	}
	if s.Err == nil {
		s.Err = s.Out
	}
	return &s
}

// ParseLevel maps debug/info/warn/error to a slog level, defaulting to info.
func ParseLevel(s string) slog.Level {
	var l slog.Level
	if e := l.UnmarshalText([]byte(strings.TrimSpace(s))); e != nil {
		return slog.LevelInfo
	}
	return l
}

func (s *jsonhandler) clone() *jsonhandler {
	return &jsonhandler{
		Out:    s.Out,
		Err:    s.Err,
		Option: s.Option,
		attrs:  append([]slog.Attr(nil), s.attrs...),
		group:  s.group,
		mu:     s.mu,
	}
}

func (s *jsonhandler) Enabled(ctx context.Context, l slog.Level) bool {
	var min slog.Level
	if s.Option.Level != nil {
		min = s.Option.Level.Level()
	}
	return l >= min
}

func (s *jsonhandler) Handle(ctx context.Context, r slog.Record) (e error) {
	if !s.Enabled(ctx, r.Level) {
		return
	}
	var msg = map[string]any{
		"msg":   r.Message,
		"time":  r.Time.String(),
		"level": r.Level.String(),
	}
	if s.Option.AddSource && r.PC != 0 {
		msg["source"] = sourceOf(r.PC)
	}

	for _, v := range s.attrs {
		s.put(msg, "", v)
	}
	r.Attrs(func(v slog.Attr) bool {
		s.put(msg, s.group, v)
		return true
	})

	var w = s.Out
	if r.Level >= slog.LevelError && s.Err != nil {
		w = s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	e = enc.Encode(msg)
	return
}

func (s *jsonhandler) put(msg map[string]any, prefix string, a slog.Attr) {
	if s.Option.ReplaceAttr != nil && a.Value.Kind() != slog.KindGroup {
		var groups []string
		if prefix != "" {
			groups = strings.Split(prefix, ".")
		}
		a = s.Option.ReplaceAttr(groups, a)
	}
	if a.Equal(slog.Attr{}) {
		return
	}
	key := a.Key
	if prefix != "" {
		key = prefix + "." + key
	}
	if a.Value.Kind() == slog.KindGroup {
		if a.Key == "" {
			key = prefix
		}
		for _, v := range a.Value.Group() {
			s.put(msg, key, v)
		}
		return
	}
	msg[key] = a.Value.Resolve().Any()
}

func (s *jsonhandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	a := s.clone()
	for _, v := range attrs {
		if s.group != "" {
			v.Key = s.group + "." + v.Key
		}
		a.attrs = append(a.attrs, v)
	}
	return a
}

// WithGroup prefixes the keys of later attributes with name.
func (s *jsonhandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return s
	}
	a := s.clone()
	if a.group != "" {
		a.group += "." + name
	} else {
		a.group = name
	}
	return a
}

func sourceOf(pc uintptr) string {
	fs := runtime.CallersFrames([]uintptr{pc})
	f, _ := fs.Next()
	return f.File + ":" + strconv.Itoa(f.Line)
}
