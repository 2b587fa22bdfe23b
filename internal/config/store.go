package config

import (
	"os"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ChangeHook is called after the stored configuration changed.
type ChangeHook func(old, new Config)

// Store holds the current configuration together with the raw document it
// was decoded from, so partial updates merge at the document level.
type Store struct {
	mu    sync.RWMutex
	doc   Document
	cfg   Config
	hooks []ChangeHook
	log   zerolog.Logger
}

// NewStore creates a store holding cfg, decoded from doc.
func NewStore(cfg Config, doc Document) *Store {
	if doc == nil {
		doc = make(Document)
	}
	return &Store{
		doc: Clone(doc),
		cfg: cfg,
		log: log.With().Str("component", "config").Logger(),
	}
}

// Get returns the current configuration.
func (s *Store) Get() Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

// Document returns a copy of the raw document.
func (s *Store) Document() Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Clone(s.doc)
}

// OnChange registers a hook called after every successful Update, Replace
// or Reload.
func (s *Store) OnChange(h ChangeHook) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hooks = append(s.hooks, h)
}

// Update merges partial into the raw document, decodes and validates the
// result and fires the change hooks. On error the store is unchanged.
func (s *Store) Update(partial Document) error {
	s.mu.RLock()
	merged := DeepMerge(Clone(s.doc), partial)
	s.mu.RUnlock()
	return s.apply(merged)
}

// Replace swaps the raw document for doc.
func (s *Store) Replace(doc Document) error {
	return s.apply(Clone(doc))
}

// Reload reads path again, with environment overrides, and replaces the
// document.
func (s *Store) Reload(path string) error {
	doc, err := ReadDocument(path)
	if err != nil {
		return err
	}
	if err := s.apply(DeepMerge(doc, EnvOverrides(os.LookupEnv))); err != nil {
		return err
	}
	s.log.Info().Str("path", path).Msg("config reloaded")
	return nil
}

func (s *Store) apply(doc Document) error {
	cfg, err := Decode(doc)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	old := s.cfg
	s.doc = doc
	s.cfg = cfg
	hooks := append([]ChangeHook(nil), s.hooks...)
	s.mu.Unlock()

	for _, h := range hooks {
		h(old, cfg)
	}
	return nil
}
