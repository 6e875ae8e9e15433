package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/river2spring/monad-agent-dating-app/ai"
	"github.com/river2spring/monad-agent-dating-app/api"
	"github.com/river2spring/monad-agent-dating-app/communication"
	"github.com/river2spring/monad-agent-dating-app/config"
	"github.com/river2spring/monad-agent-dating-app/core"
	"github.com/river2spring/monad-agent-dating-app/registry"
	"github.com/river2spring/monad-agent-dating-app/storage"
)

// stockProfiles seeds an empty simulation with a small mixed-style
// population so a fresh start is immediately watchable.
func stockProfiles() []*core.Agent {
	type profile struct {
		id, name string
		style    core.AttachmentStyle
		goals    []core.Goal
		skills   map[string]float64
		ethics   core.Ethics
		risk     float64
	}
	profiles := []profile{
		{"ava", "Ava", core.StyleSecure, []core.Goal{core.GoalStability, core.GoalLearning},
			map[string]float64{core.SkillNegotiation: 0.7, core.SkillPatience: 0.8}, core.Ethics{Fairness: 0.8, Reciprocity: 0.7}, 0.5},
		{"blake", "Blake", core.StyleAnxious, []core.Goal{core.GoalStability},
			map[string]float64{core.SkillPatience: 0.6, core.SkillAdaptability: 0.5}, core.Ethics{Fairness: 0.6, Reciprocity: 0.9}, 0.3},
		{"cass", "Cass", core.StyleAvoidant, []core.Goal{core.GoalProfit},
			map[string]float64{core.SkillNegotiation: 0.9}, core.Ethics{Fairness: 0.4, Reciprocity: 0.3}, 0.7},
		{"dex", "Dex", core.StyleDisorganized, []core.Goal{core.GoalExploration},
			map[string]float64{core.SkillAdaptability: 0.9}, core.Ethics{Fairness: 0.5, Reciprocity: 0.5}, 0.8},
		{"emi", "Emi", core.StyleSecure, []core.Goal{core.GoalProfit, core.GoalLearning},
			map[string]float64{core.SkillNegotiation: 0.5, core.SkillAdaptability: 0.7}, core.Ethics{Fairness: 0.7, Reciprocity: 0.6}, 0.6},
		{"finn", "Finn", core.StyleAnxious, []core.Goal{core.GoalExploration, core.GoalStability},
			map[string]float64{core.SkillPatience: 0.9}, core.Ethics{Fairness: 0.9, Reciprocity: 0.8}, 0.2},
	}

	agents := make([]*core.Agent, 0, len(profiles))
	for _, p := range profiles {
		agents = append(agents, core.NewAgent(p.id, p.name, p.style, p.goals, p.skills, p.ethics, p.risk, 100))
	}
	return agents
}

func main() {
	autoRun := flag.Bool("auto", true, "Drive simulation rounds automatically")
	flag.Parse()

	cfg := config.Load()

	db, err := storage.GetDBStorage(cfg.DataDir, cfg.SimulationID)
	if err != nil {
		log.Fatalf("Failed to open storage: %v", err)
	}
	defer db.Close()

	narrator := ai.NewNarrator(cfg.OpenAIKey)

	// Compose the event sink: dashboards over WebSocket, external consumers
	// over NATS when configured, narration on settlements.
	var broker *core.NATSBroker
	if cfg.NATSURL != "" {
		broker, err = core.NewNATSBroker(cfg.NATSURL)
		if err != nil {
			log.Printf("NATS unavailable (%v), continuing without it", err)
		} else {
			defer broker.Close()
		}
	}

	var engine *core.Engine
	sink := func(subject string, payload interface{}) {
		if broker != nil {
			broker.Sink()(subject, payload)
		}
		communication.BroadcastEvent(wsEventType(subject), payload)

		ev, ok := payload.(core.SettlementEvent)
		if !ok || narrator == nil {
			return
		}
		go func() {
			a1, err1 := engine.AgentSnapshot(ev.Agent1ID)
			a2, err2 := engine.AgentSnapshot(ev.Agent2ID)
			if err1 != nil || err2 != nil {
				return
			}
			ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
			defer cancel()
			story, err := narrator.NarrateRound(ctx, ev, a1, a2)
			if err != nil || story == "" {
				return
			}
			communication.BroadcastEvent(communication.EventRoundStory, map[string]string{
				"bond_id": ev.BondID,
				"story":   story,
			})
		}()
	}

	engine = core.NewEngine(core.EngineConfig{
		RevealTimeout: cfg.RevealTimeout,
		Seed:          cfg.Seed,
		Tunables:      core.DefaultTunables(),
	}, core.NewMemoryLedger(), db, sink)

	restoreOrSeed(engine, db)

	go func() {
		sweep := time.NewTicker(cfg.SweepInterval)
		retry := time.NewTicker(cfg.RetryInterval)
		defer sweep.Stop()
		defer retry.Stop()
		for {
			select {
			case now := <-sweep.C:
				if n := engine.SweepTimeouts(now); n > 0 {
					log.Printf("Swept %d stale bonds", n)
				}
			case <-retry.C:
				engine.RetrySettlements()
			}
		}
	}()

	if *autoRun {
		go func() {
			ticker := time.NewTicker(cfg.RoundInterval)
			defer ticker.Stop()
			for range ticker.C {
				engine.RunRound()
			}
		}()
	}

	log.Printf("Simulation %s listening on :%d", cfg.SimulationID, cfg.APIPort)
	if err := api.StartServer(cfg.APIPort, engine); err != nil {
		log.Fatalf("API server failed: %v", err)
	}
}

// restoreOrSeed reloads the persisted population and open bonds, seeding the
// stock profiles on a cold start.
func restoreOrSeed(engine *core.Engine, db storage.Storage) {
	views, err := db.GetAgents()
	if err != nil {
		log.Fatalf("Failed to load agents: %v", err)
	}

	if len(views) == 0 {
		for _, a := range stockProfiles() {
			if err := engine.AddAgent(a); err != nil {
				log.Fatalf("Failed to seed agent %s: %v", a.ID, err)
			}
			if _, err := registry.RegisterAgent(a.ID); err != nil {
				log.Fatalf("Failed to register identity for %s: %v", a.ID, err)
			}
		}
		log.Printf("Seeded %d stock agents", len(stockProfiles()))
		return
	}

	for _, v := range views {
		engine.RestoreAgent(v.Restore())
		if _, err := registry.RegisterAgent(v.ID); err != nil {
			log.Fatalf("Failed to register identity for %s: %v", v.ID, err)
		}
	}
	bonds, err := db.GetBonds()
	if err != nil {
		log.Fatalf("Failed to load bonds: %v", err)
	}
	for _, v := range bonds {
		engine.RestoreBond(v.Restore())
	}
	log.Printf("Restored %d agents, %d bonds", len(views), len(bonds))
}

// wsEventType maps engine subjects onto dashboard event names.
func wsEventType(subject string) string {
	switch subject {
	case core.SubjectBondProposed:
		return communication.EventBondProposed
	case core.SubjectBondFunded:
		return communication.EventBondFunded
	case core.SubjectBondCommitted:
		return communication.EventMovesCommitted
	case core.SubjectBondRevealed:
		return communication.EventMovesRevealed
	case core.SubjectBondSettled:
		return communication.EventBondSettled
	case core.SubjectBondTimedOut:
		return communication.EventBondTimedOut
	case core.SubjectAgentSuspicious:
		return communication.EventSuspiciousAgent
	default:
		return subject
	}
}
