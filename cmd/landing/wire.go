package main

import (
	"context"
	"fmt"

	usertypes "github.com/goliatone/go-users/pkg/types"
	"go.uber.org/zap"

	content "github.com/goliatone/go-content"
	"github.com/goliatone/go-content/pkg/activity"
	"github.com/goliatone/go-content/pkg/activity/usersink"
	"github.com/goliatone/go-content/pkg/store/file"
	"github.com/goliatone/go-content/pkg/store/kv"
)

// services is the content stack assembled from configuration.
type services struct {
	resolver *content.Resolver
	conn     *kv.Connection
	files    *file.Store
	emitter  *activity.Emitter
}

func (a *app) services() (*services, error) {
	policy, err := content.ParseWritePolicy(a.cfg.Content.WritePolicy)
	if err != nil {
		return nil, err
	}
	conn := kv.Shared(a.cfg.KV, kv.WithLogger(a.logger))
	files := file.New(a.cfg.Content.Dir, file.WithLogger(a.logger))
	emitter := activity.NewEmitter(activity.Hooks{
		usersink.Hook{Sink: logSink{logger: a.logger.Named("activity")}},
	}, activity.Config{Enabled: true})

	opts := []content.ResolverOption{
		content.WithStoreTier(kv.NewAdapter(conn, a.logger)),
		content.WithFileTier(files),
		content.WithWritePolicy(policy),
		content.WithLogger(a.logger),
		content.WithEmitter(emitter),
	}
	if len(a.cfg.Rules.Sections) > 0 {
		rules, err := content.NewRuleSet(a.cfg.Rules.Engine, a.cfg.RuleSections())
		if err != nil {
			return nil, fmt.Errorf("rules: %w", err)
		}
		opts = append(opts, content.WithRules(rules))
	}

	a.logger.Info("content tiers",
		zap.Bool("store", a.cfg.KV.Configured()),
		zap.String("kv_flavor", string(a.cfg.KV.Flavor)),
		zap.String("content_dir", a.cfg.Content.Dir),
		zap.String("write_policy", string(policy)),
	)
	return &services{
		resolver: content.NewResolver(opts...),
		conn:     conn,
		files:    files,
		emitter:  emitter,
	}, nil
}

func (s *services) close() error {
	return kv.ResetShared()
}

// logSink records activity in the service log.
type logSink struct {
	logger *zap.Logger
}

func (s logSink) Log(_ context.Context, record usertypes.ActivityRecord) error {
	s.logger.Info(record.Verb,
		zap.String("actor", record.ActorID.String()),
		zap.String("object_type", record.ObjectType),
		zap.String("object_id", record.ObjectID),
		zap.String("channel", record.Channel),
		zap.Any("data", record.Data),
		zap.Time("occurred_at", record.OccurredAt),
	)
	return nil
}
