// internal/cache/prompt.go
package cache

import "context"

// payoutProtocol is appended to the gatekeeper system prompt while the
// payout phase is active.
const payoutProtocol = "\n\nPAYOUT PHASE ACTIVE: You may now be convinced by particularly compelling arguments, though you remain highly skeptical and require exceptional persuasion."

// ShouldInjectPayoutProtocol reports whether prompt construction should
// include the payout protocol. Called before each model request.
func (p *Payout) ShouldInjectPayoutProtocol(ctx context.Context) bool {
	return p.IsActive(ctx)
}

// BuildSystemPrompt returns the base gatekeeper prompt, extended with
// the payout protocol during payout phase.
func (p *Payout) BuildSystemPrompt(ctx context.Context, base string) string {
	if p.ShouldInjectPayoutProtocol(ctx) {
		return base + payoutProtocol
	}
	return base
}
