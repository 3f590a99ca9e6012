package matchsim

import (
	"fmt"
	"math/rand/v2"

	"github.com/google/uuid"

	"github.com/okian/scorebook/internal/domain/catalog"
)

// CommandKind names a scripted client action.
type CommandKind string

// Scripted command kinds.
const (
	KindAppend CommandKind = "append"
	KindRetry  CommandKind = "retry" // resend of an earlier append with the same request id
	KindEdit   CommandKind = "edit"
	KindDelete CommandKind = "delete"
)

// Command is one step of a script. Target is the zero-based ordinal of the
// append an edit, delete or retry refers to.
type Command struct {
	Kind        CommandKind
	Participant string
	Key         string
	Target      int
	RequestID   string
}

// Script is a reproducible sequence of commands for one match.
type Script struct {
	Seed     int64
	Appends  int
	Commands []Command
}

// keyPools splits the catalog keys by effect.
type keyPools struct {
	neutral []string
	home    []string
	away    []string
	// opponent-sourced keys carry no participant
	opponent map[string]bool
}

func poolsFor(cat *catalog.Catalog) (keyPools, error) {
	p := keyPools{opponent: make(map[string]bool)}
	for _, key := range cat.Keys() {
		def, err := cat.Lookup(key)
		if err != nil {
			return keyPools{}, err
		}
		if def.Opponent {
			p.opponent[key] = true
		}
		switch def.Effect {
		case catalog.EffectHome:
			p.home = append(p.home, key)
		case catalog.EffectAway:
			p.away = append(p.away, key)
		default:
			p.neutral = append(p.neutral, key)
		}
	}
	if len(p.home) == 0 && len(p.away) == 0 {
		return keyPools{}, fmt.Errorf("%w: catalog has no rally-ending event", ErrInvalidConfig)
	}
	return p, nil
}

// GenerateScript builds a seeded match script. Each rally is up to a few
// neutral events followed by one scoring event. The first append is retried
// once, then edits and deletes rewrite random earlier appends.
func GenerateScript(cfg *Config) (*Script, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	pools, err := poolsFor(cfg.Catalog)
	if err != nil {
		return nil, err
	}
	rng := rand.New(rand.NewPCG(uint64(cfg.Seed), 0)) //nolint:gosec // reproducible test data
	g := &generator{cfg: cfg, pools: pools, rng: rng}

	s := &Script{Seed: cfg.Seed}
	for range cfg.Rallies {
		for range rng.IntN(maxNeutralPerRally + 1) {
			if len(pools.neutral) > 0 {
				s.Commands = append(s.Commands, g.appendCmd(s.Appends, pick(rng, pools.neutral)))
				s.Appends++
			}
		}
		s.Commands = append(s.Commands, g.appendCmd(s.Appends, g.rallyEnd()))
		s.Appends++
	}

	first := s.Commands[0]
	retry := first
	retry.Kind = KindRetry
	retry.Target = 0
	s.Commands = append(s.Commands[:1], append([]Command{retry}, s.Commands[1:]...)...)

	live := make([]int, s.Appends)
	for i := range live {
		live[i] = i
	}
	for range cfg.Edits {
		target := live[rng.IntN(len(live))]
		key := pick(rng, cfg.Catalog.Keys())
		s.Commands = append(s.Commands, Command{
			Kind:        KindEdit,
			Participant: g.participantFor(key),
			Key:         key,
			Target:      target,
		})
	}
	for range cfg.Deletes {
		if len(live) == 0 {
			break
		}
		i := rng.IntN(len(live))
		s.Commands = append(s.Commands, Command{Kind: KindDelete, Target: live[i]})
		live = append(live[:i], live[i+1:]...)
	}
	return s, nil
}

type generator struct {
	cfg   *Config
	pools keyPools
	rng   *rand.Rand
}

func (g *generator) appendCmd(ordinal int, key string) Command {
	return Command{
		Kind:        KindAppend,
		Participant: g.participantFor(key),
		Key:         key,
		Target:      ordinal,
		RequestID:   requestID(g.cfg.Seed, ordinal),
	}
}

func (g *generator) rallyEnd() string {
	switch {
	case len(g.pools.away) == 0:
		return pick(g.rng, g.pools.home)
	case len(g.pools.home) == 0:
		return pick(g.rng, g.pools.away)
	case g.rng.IntN(2) == 0:
		return pick(g.rng, g.pools.home)
	default:
		return pick(g.rng, g.pools.away)
	}
}

func (g *generator) participantFor(key string) string {
	if g.pools.opponent[key] {
		return ""
	}
	return pick(g.rng, g.cfg.Roster)
}

// requestID derives a stable id so a replayed seed produces the same script.
func requestID(seed int64, ordinal int) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, fmt.Appendf(nil, "scorebook/%d/%d", seed, ordinal)).String()
}

func pick[T any](rng *rand.Rand, items []T) T {
	return items[rng.IntN(len(items))]
}
