package access

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/flourish/riskassess/internal/domain/study"
	"github.com/flourish/riskassess/internal/platform/upstream"
)

// Permission is the edit-permission decision for one user on one study.
// Source records which roster answered: the site management system when it
// is reachable, the local study record otherwise.
type Permission struct {
	CanEdit   bool   `json:"canEdit"`
	UserEmail string `json:"userEmail"`
	PIEmail   string `json:"piEmail"`
	SDEmail   string `json:"sdEmail"`
	Reason    string `json:"reason"`
	Source    string `json:"source,omitempty"`
}

// Decision reasons shown to the user.
const (
	ReasonPI      = "User is Principal Investigator"
	ReasonSD      = "User is Site Director"
	ReasonNotTeam = "User is not PI or SD for this study"
	ReasonNoUser  = "No current user email found"
)

const (
	SourceRoster = "roster"
	SourceLocal  = "local"
)

// rosterTeam is the team record the site management system returns per
// study.
type rosterTeam struct {
	PrincipalInvestigatorEmail string `json:"principal_investigator_email"`
	SiteDirectorEmail          string `json:"site_director_email"`
}

type Service struct {
	studies study.Repository
	roster  *upstream.Client
	logger  zerolog.Logger
}

func NewService(studies study.Repository, logger zerolog.Logger) *Service {
	return &Service{studies: studies, logger: logger}
}

// SetRoster attaches the upstream roster source. Without it, decisions use
// the local study record only.
func (s *Service) SetRoster(c *upstream.Client) {
	s.roster = c
}

// Resolve decides whether the user may edit the study's assessment. Only
// the study's principal investigator and site director may. The roster
// lookup is preferred; when it fails the local study record decides and
// the result is flagged as locally sourced.
func (s *Service) Resolve(ctx context.Context, studyID uuid.UUID, userEmail string) (*Permission, error) {
	st, err := s.studies.GetByID(ctx, studyID)
	if err != nil {
		return nil, err
	}

	piEmail, sdEmail, source := s.teamEmails(ctx, st)
	p := &Permission{
		UserEmail: userEmail,
		PIEmail:   piEmail,
		SDEmail:   sdEmail,
		Source:    source,
	}
	switch {
	case userEmail == "":
		p.Reason = ReasonNoUser
	case piEmail != "" && strings.EqualFold(userEmail, piEmail):
		p.CanEdit = true
		p.Reason = ReasonPI
	case sdEmail != "" && strings.EqualFold(userEmail, sdEmail):
		p.CanEdit = true
		p.Reason = ReasonSD
	default:
		p.Reason = ReasonNotTeam
	}
	return p, nil
}

func (s *Service) teamEmails(ctx context.Context, st *study.Study) (pi, sd, source string) {
	if s.roster != nil && s.roster.Configured() {
		var team rosterTeam
		err := s.roster.GetJSON(ctx, "/studies/"+st.StudyCode+"/team", nil, &team)
		if err == nil && (team.PrincipalInvestigatorEmail != "" || team.SiteDirectorEmail != "") {
			return team.PrincipalInvestigatorEmail, team.SiteDirectorEmail, SourceRoster
		}
		if err != nil {
			s.logger.Warn().Err(err).Str("study", st.StudyCode).Msg("roster lookup failed, using local record")
		}
	}
	pi = st.PrincipalInvestigatorEmail
	if st.SiteDirectorEmail != nil {
		sd = *st.SiteDirectorEmail
	}
	return pi, sd, SourceLocal
}
