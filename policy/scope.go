package policy

import (
	"fmt"
	"strings"
)

// VerifyScoped checks that every Allow statement's resources are drawn
// exactly from the allowed ARN set. Bare or service-level wildcards fail
// even if present in the allowed set; structured patterns (an object ARN's
// "/*" tail, a stack ARN's physical-id tail) are only acceptable as whole
// entries of the allowed set, never synthesized by a statement on its own.
//
// Deny statements are exempt: a deny that covers too much keeps the
// least-privilege promise rather than breaking it.
func (d Document) VerifyScoped(allowed []string) error {
	allowedSet := make(map[string]bool, len(allowed))
	for _, arn := range allowed {
		allowedSet[arn] = true
	}

	for i, stmt := range d.Statement {
		label := stmt.Sid
		if label == "" {
			label = fmt.Sprintf("#%d", i)
		}
		if stmt.Effect != EffectAllow {
			continue
		}
		if len(stmt.Resource) == 0 {
			return fmt.Errorf("statement %s: empty resource list", label)
		}
		for _, resource := range stmt.Resource {
			if err := checkResource(resource); err != nil {
				return fmt.Errorf("statement %s: %w", label, err)
			}
			if !allowedSet[resource] {
				return fmt.Errorf("statement %s: resource %s is not in the allowed set", label, resource)
			}
		}
	}
	return nil
}

func checkResource(resource string) error {
	if resource == "" {
		return fmt.Errorf("empty resource")
	}
	if resource == "*" {
		return fmt.Errorf("wildcard resource")
	}
	// An ARN whose resource part is just "*" grants a whole service.
	if strings.HasSuffix(resource, ":*") || strings.HasSuffix(resource, ":::*") {
		return fmt.Errorf("service-wide resource %s", resource)
	}
	return nil
}
