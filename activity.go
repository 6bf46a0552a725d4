package content

import (
	"context"
	"strings"

	"github.com/goliatone/go-content/pkg/activity"
)

type actorKey struct{}

// WithActor stores the identity performing a write on ctx. The resolver
// attaches it to emitted activity events.
func WithActor(ctx context.Context, actor string) context.Context {
	actor = strings.TrimSpace(actor)
	if actor == "" {
		return ctx
	}
	return context.WithValue(ctx, actorKey{}, actor)
}

// ActorFromContext returns the identity stored by WithActor.
func ActorFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	actor, _ := ctx.Value(actorKey{}).(string)
	return actor
}

// WithActivityHooks emits content events to hooks. Nil hooks are dropped.
func WithActivityHooks(hooks activity.Hooks) ResolverOption {
	normalized := activity.CloneHooks(hooks)
	return func(r *Resolver) {
		if len(normalized) == 0 {
			r.emitter = nil
			return
		}
		r.emitter = activity.NewEmitter(normalized, activity.Config{Enabled: true})
	}
}

// WithEmitter emits content events through a preconfigured emitter.
func WithEmitter(emitter *activity.Emitter) ResolverOption {
	return func(r *Resolver) {
		r.emitter = emitter
	}
}

func (r *Resolver) emitUpdated(ctx context.Context, result WriteResult) {
	if !r.emitter.Enabled() {
		return
	}
	tiers := make([]string, 0, 2)
	if result.Store {
		tiers = append(tiers, r.store.Name())
	}
	if result.File {
		tiers = append(tiers, r.file.Name())
	}
	event := activity.BuildContentUpdatedEvent(activity.ContentEventInput{
		ActorID:    ActorFromContext(ctx),
		Section:    string(result.Section),
		Tiers:      tiers,
		OccurredAt: r.now(),
	})
	if err := r.emitter.Emit(ctx, event); err != nil {
		r.logger.Warn("activity hook failed",
			zapSection(result.Section),
			zapError(err),
		)
	}
}
