package resolver

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/gencat/gencat/internal/domain"
	domainerrors "github.com/gencat/gencat/internal/errors"
)

// ConsolePrompter asks an operator to settle each fuzzy match.
type ConsolePrompter struct {
	in  *bufio.Reader
	out io.Writer
}

// NewConsolePrompter reads answers from in and writes questions to out.
func NewConsolePrompter(in io.Reader, out io.Writer) *ConsolePrompter {
	return &ConsolePrompter{in: bufio.NewReader(in), out: out}
}

// Decide prints the candidate and blocks until the operator answers 1, 2, or 3.
// Any other answer is re-prompted. Closed input is an IO error.
func (p *ConsolePrompter) Decide(ctx context.Context, c Candidate) (domain.Decision, error) {
	fmt.Fprintln(p.out, "----------------")
	fmt.Fprintf(p.out, "SEEKING   : \"%s\"\n", c.Raw)
	fmt.Fprintf(p.out, "SEARCH    : \"%s\"\n", c.Form)
	fmt.Fprintf(p.out, "FOUND     : \"%s\"\n", c.Alias)
	fmt.Fprintf(p.out, "CANONICAL : \"%s\"\n", c.Canonical)
	fmt.Fprintf(p.out, "CONFIDENCE: %d\n", c.Score)
	fmt.Fprintf(p.out, "%s. Same, update canonical to \"%s\"\n", domain.DecisionAdopt, c.Raw)
	fmt.Fprintf(p.out, "%s. Same, keep canonical name \"%s\"\n", domain.DecisionKeep, c.Canonical)
	fmt.Fprintf(p.out, "%s. Not the Same\n", domain.DecisionReject)

	for {
		if err := ctx.Err(); err != nil {
			return 0, err
		}

		line, err := p.in.ReadString('\n')
		answer := strings.TrimSpace(line)
		if d, ok := parseOption(answer); ok {
			return d, nil
		}
		if err != nil {
			if domainerrors.Is(err, io.EOF) {
				err = io.ErrUnexpectedEOF
			}
			return 0, domainerrors.Wrapf(err, domainerrors.CodeIO, "%s: no answer for %q", c.Field, c.Raw)
		}
		fmt.Fprintln(p.out, "Sorry, that is an invalid option. Please try again")
	}
}

// parseOption accepts only the numbered labels.
func parseOption(s string) (domain.Decision, bool) {
	for _, d := range []domain.Decision{domain.DecisionAdopt, domain.DecisionKeep, domain.DecisionReject} {
		if s == d.String() {
			return d, true
		}
	}
	return 0, false
}

// PolicyDecider answers every candidate with the same decision. It lets a run
// proceed unattended.
type PolicyDecider struct {
	decision domain.Decision
}

// NewPolicyDecider returns a decider that always answers d.
func NewPolicyDecider(d domain.Decision) (*PolicyDecider, error) {
	if !d.Valid() {
		return nil, domainerrors.Validationf("invalid policy decision %d", int(d))
	}
	return &PolicyDecider{decision: d}, nil
}

// Decide returns the fixed decision.
func (p *PolicyDecider) Decide(context.Context, Candidate) (domain.Decision, error) {
	return p.decision, nil
}

// Policy values for unattended runs. PolicyPrompt selects the console.
const (
	PolicyPrompt = "prompt"
	PolicyKeep   = "keep"
	PolicyAdopt  = "adopt"
	PolicyReject = "reject"
)

// NewDecider builds the decider named by policy. in and out are used only for PolicyPrompt.
func NewDecider(policy string, in io.Reader, out io.Writer) (Decider, error) {
	if policy == PolicyPrompt || policy == "" {
		return NewConsolePrompter(in, out), nil
	}
	d, ok := domain.ParseDecision(policy)
	if !ok {
		return nil, domainerrors.Validationf("unknown ambiguity policy %q", policy)
	}
	return NewPolicyDecider(d)
}
