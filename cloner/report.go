package cloner

import (
	"fmt"
	"strings"
)

// Phase names a single creation loop of the pipeline
type Phase string

// Pipeline phases
const (
	PhaseRoles      Phase = "roles"
	PhaseCategories Phase = "categories"
	PhaseChannels   Phase = "channels"
)

// Failure describes single item that could not be created
type Failure struct {
	Phase Phase
	Name  string
	Err   error
}

func (f Failure) String() string {
	return fmt.Sprintf("%s `%s`: %v", f.Phase, f.Name, f.Err)
}

// PhaseReport accumulates outcome of a single creation loop
type PhaseReport struct {
	Phase     Phase
	Attempted int
	Created   int
	Skipped   int
	Halted    bool
	Failures  []Failure
}

func (p *PhaseReport) fail(name string, err error) {
	p.Failures = append(p.Failures, Failure{
		Phase: p.Phase,
		Name:  name,
		Err:   err,
	})
}

func (p *PhaseReport) String() string {
	s := fmt.Sprintf("%s: %d created, %d failed", p.Phase, p.Created, len(p.Failures))

	if p.Skipped > 0 {
		s += fmt.Sprintf(", %d skipped", p.Skipped)
	}

	if p.Halted {
		s += " (halted)"
	}

	return s
}

// Report is the outcome of a single clone invocation
type Report struct {
	SourceID        string
	DestinationID   string
	DestinationName string
	RolesFetched    int
	ChannelsFetched int
	Roles           PhaseReport
	Categories      PhaseReport
	Channels        PhaseReport
	RoleMapping     RoleMapping
	CategoryMapping CategoryMapping
}

func newReport(sourceID, destinationID string) *Report {
	return &Report{
		SourceID:        sourceID,
		DestinationID:   destinationID,
		Roles:           PhaseReport{Phase: PhaseRoles},
		Categories:      PhaseReport{Phase: PhaseCategories},
		Channels:        PhaseReport{Phase: PhaseChannels},
		RoleMapping:     make(RoleMapping),
		CategoryMapping: make(CategoryMapping),
	}
}

// Failures returns failures of all phases in pipeline order
func (r *Report) Failures() []Failure {
	var fs []Failure

	fs = append(fs, r.Roles.Failures...)
	fs = append(fs, r.Categories.Failures...)
	fs = append(fs, r.Channels.Failures...)

	return fs
}

// Created returns total number of created items
func (r *Report) Created() int {
	return r.Roles.Created + r.Categories.Created + r.Channels.Created
}

// Summary renders counts of all phases and the failure list
func (r *Report) Summary() string {
	buf := &strings.Builder{}

	for _, p := range []*PhaseReport{&r.Roles, &r.Categories, &r.Channels} {
		_, _ = buf.WriteString(p.String())
		_, _ = buf.WriteString("\n")
	}

	fs := r.Failures()
	if len(fs) == 0 {
		return buf.String()
	}

	_, _ = buf.WriteString("\nfailures:\n")

	for _, f := range fs {
		_, _ = buf.WriteString("- ")
		_, _ = buf.WriteString(f.String())
		_, _ = buf.WriteString("\n")
	}

	return buf.String()
}
