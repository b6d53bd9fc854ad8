package engine

import (
	"context"

	"go.uber.org/zap"

	"example.com/healthbridge/internal/domain"
	"example.com/healthbridge/internal/registry"
)

// requiredTokens resolves the permission tokens for a request, rejecting
// unknown capabilities and read-only capabilities appearing in the write set.
func requiredTokens(read, write []string) ([]string, error) {
	seen := make(map[string]struct{})
	tokens := make([]string, 0, len(read)+len(write))

	add := func(token string) {
		if _, ok := seen[token]; ok {
			return
		}
		seen[token] = struct{}{}
		tokens = append(tokens, token)
	}

	for _, capability := range read {
		token, ok := registry.ReadToken(capability)
		if !ok {
			return nil, domain.Validationf("unknown read capability %q", capability)
		}
		add(token)
	}
	for _, capability := range write {
		if registry.IsSpecial(capability) {
			return nil, domain.Validationf("capability %q is read-only", capability)
		}
		token, ok := registry.WriteToken(capability)
		if !ok {
			return nil, domain.Validationf("unknown write capability %q", capability)
		}
		add(token)
	}
	return tokens, nil
}

// partitionStatus projects the requested capabilities onto the granted token
// set. Each capability lands in exactly one partition per direction.
func partitionStatus(read, write []string, granted map[string]struct{}) domain.AuthorizationStatus {
	status := domain.AuthorizationStatus{
		ReadAuthorized:  []string{},
		ReadDenied:      []string{},
		WriteAuthorized: []string{},
		WriteDenied:     []string{},
	}

	seenRead := make(map[string]struct{})
	for _, capability := range read {
		if _, dup := seenRead[capability]; dup {
			continue
		}
		seenRead[capability] = struct{}{}
		token, _ := registry.ReadToken(capability)
		if _, ok := granted[token]; ok {
			status.ReadAuthorized = append(status.ReadAuthorized, capability)
		} else {
			status.ReadDenied = append(status.ReadDenied, capability)
		}
	}

	seenWrite := make(map[string]struct{})
	for _, capability := range write {
		if _, dup := seenWrite[capability]; dup {
			continue
		}
		seenWrite[capability] = struct{}{}
		token, _ := registry.WriteToken(capability)
		if _, ok := granted[token]; ok {
			status.WriteAuthorized = append(status.WriteAuthorized, capability)
		} else {
			status.WriteDenied = append(status.WriteDenied, capability)
		}
	}
	return status
}

// CheckAuthorization reports the grant state of each requested capability
// without triggering a consent flow.
func (e *Engine) CheckAuthorization(ctx context.Context, read, write []string) (domain.AuthorizationStatus, error) {
	if _, err := requiredTokens(read, write); err != nil {
		return domain.AuthorizationStatus{}, err
	}
	granted, err := e.grantedSet(ctx)
	if err != nil {
		return domain.AuthorizationStatus{}, err
	}
	return partitionStatus(read, write, granted), nil
}

// RequestAuthorization resolves permissions for the requested capabilities.
// When every required token is already granted, resolution is synchronous.
// Otherwise the engine hands the missing tokens to the consent flow and
// recomputes the status projection once control returns, whatever the user
// decided.
func (e *Engine) RequestAuthorization(ctx context.Context, read, write []string) (domain.AuthorizationStatus, error) {
	tokens, err := requiredTokens(read, write)
	if err != nil {
		return domain.AuthorizationStatus{}, err
	}
	granted, err := e.grantedSet(ctx)
	if err != nil {
		return domain.AuthorizationStatus{}, err
	}

	missing := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if _, ok := granted[token]; !ok {
			missing = append(missing, token)
		}
	}

	if len(missing) > 0 {
		if e.flow == nil {
			return domain.AuthorizationStatus{}, domain.Permissionf("no consent flow available to request %d permissions", len(missing))
		}
		ticket, err := e.flow.Begin(ctx, missing)
		if err != nil {
			return domain.AuthorizationStatus{}, domain.Platformf("begin consent flow", err)
		}
		e.log.Debug("consent flow started",
			zap.Strings("tokens", missing),
			zap.String("ticket", ticket),
		)
		if err := e.flow.Await(ctx, ticket); err != nil {
			return domain.AuthorizationStatus{}, domain.Platformf("await consent flow", err)
		}
		granted, err = e.grantedSet(ctx)
		if err != nil {
			return domain.AuthorizationStatus{}, err
		}
	}

	return partitionStatus(read, write, granted), nil
}
