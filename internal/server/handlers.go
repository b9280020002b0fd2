package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/jonathan/skill-recommender/internal/db"
	"github.com/jonathan/skill-recommender/internal/llm"
	"github.com/jonathan/skill-recommender/internal/skills"
	"github.com/jonathan/skill-recommender/internal/team"
	"github.com/jonathan/skill-recommender/internal/types"
)

// maxBodyBytes caps JSON and roster uploads.
const maxBodyBytes = 10 << 20

// TeamRunRequest is the body of the team recommendation endpoints.
type TeamRunRequest struct {
	RecommendationType types.RecommendationType `json:"recommendation_type"`
	Dynamic            bool                     `json:"dynamic"`
}

// TeamRunResponse wraps one response per roster member.
type TeamRunResponse struct {
	TotalMembers    int                             `json:"total_members"`
	Recommendations []*types.RecommendationResponse `json:"recommendations"`
}

// ModelSwitchRequest selects the generation tier by name or alias.
type ModelSwitchRequest struct {
	Model string `json:"model"`
}

// decodeJSON reads a JSON body into v. An empty body leaves v untouched.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return &ErrValidation{Field: "body", Message: "invalid JSON: " + err.Error()}
	}
	return nil
}

func (s *Server) handleRecommend(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var req types.RecommendationRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if s.pipeline == nil {
		s.writeError(w, unavailable("pipeline", "recommendation pipeline"))
		return
	}

	resp, err := s.pipeline.Recommend(r.Context(), req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, resp)
}

// teamRequest decodes and checks a team run body against the current roster.
func (s *Server) teamRequest(r *http.Request) (TeamRunRequest, []types.TeamMember, error) {
	req := TeamRunRequest{RecommendationType: types.RecommendationUpskill}
	if err := decodeJSON(r, &req); err != nil {
		return req, nil, err
	}
	req.RecommendationType = types.RecommendationType(strings.ToLower(strings.TrimSpace(string(req.RecommendationType))))
	switch req.RecommendationType {
	case types.RecommendationUpskill, types.RecommendationCrossSkill:
	case "":
		req.RecommendationType = types.RecommendationUpskill
	default:
		return req, nil, &ErrValidation{Field: "recommendation_type", Message: "must be upskill or cross_skill"}
	}

	if s.pipeline == nil {
		return req, nil, unavailable("pipeline", "recommendation pipeline")
	}
	members := s.roster.List()
	if len(members) == 0 {
		return req, nil, &ErrValidation{Field: "team", Message: "no team loaded; POST /ingest/team first"}
	}
	return req, members, nil
}

func (s *Server) handleRecommendTeam(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	req, members, err := s.teamRequest(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	results := s.pipeline.RunTeam(r.Context(), members, req.RecommendationType, req.Dynamic)
	s.jsonResponse(w, http.StatusOK, TeamRunResponse{
		TotalMembers:    len(results),
		Recommendations: results,
	})
}

// handleRecommendTeamStream runs members one at a time and emits a "member" event after each.
func (s *Server) handleRecommendTeamStream(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	req, members, err := s.teamRequest(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	sse, err := NewSSEWriter(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	ctx := r.Context()
	for i, m := range members {
		if ctx.Err() != nil {
			sse.WriteError("request cancelled")
			return
		}
		resp := s.pipeline.Run(ctx, types.RecommendationRequest{
			MemberName:         m.Name,
			Role:               m.Role,
			Skills:             m.Skills,
			RecommendationType: req.RecommendationType,
			YearsExperience:    m.YearsExperience,
			Dynamic:            req.Dynamic,
		})
		if err := sse.WriteMember(i+1, len(members), resp); err != nil {
			return
		}
	}
	sse.WriteComplete(len(members), types.RunStatusCompleted)
}

func (s *Server) handleTrends(w http.ResponseWriter, r *http.Request) {
	role := strings.TrimSpace(r.PathValue("role"))
	if role == "" {
		s.writeError(w, &ErrValidation{Field: "role", Message: "required"})
		return
	}
	if s.trends == nil {
		s.writeError(w, unavailable("trends", "trend aggregation"))
		return
	}

	skills := splitList(r.URL.Query().Get("skills"))
	if target := strings.TrimSpace(r.URL.Query().Get("target_role")); target != "" {
		s.jsonResponse(w, http.StatusOK, s.trends.FetchCross(r.Context(), role, target, skills))
		return
	}
	s.jsonResponse(w, http.StatusOK, s.trends.Fetch(r.Context(), role, skills))
}

// handleIngestTeam accepts a multipart "file" upload or a raw body with ?format=csv|json.
// A parsed roster replaces the current one.
func (s *Server) handleIngestTeam(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	body, format, closeFn, err := s.rosterSource(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	defer closeFn()

	members, err := team.Parse(body, format)
	if err != nil {
		var rowErr *team.ValidationError
		if !errors.As(err, &rowErr) {
			err = &ErrValidation{Field: "file", Message: err.Error()}
		}
		s.writeError(w, err)
		return
	}

	report := team.Validate(members, s.table)
	s.roster.Replace(members)
	s.jsonResponse(w, http.StatusOK, report)
}

func (s *Server) rosterSource(r *http.Request) (io.Reader, string, func(), error) {
	noop := func() {}
	format := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("format")))

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		file, header, err := r.FormFile("file")
		if err != nil {
			return nil, "", noop, &ErrValidation{Field: "file", Message: err.Error()}
		}
		if format == "" {
			format = strings.ToLower(strings.TrimSpace(r.FormValue("format")))
		}
		if format == "" {
			if format, err = team.FormatFromFilename(header.Filename); err != nil {
				file.Close()
				return nil, "", noop, &ErrValidation{Field: "file", Message: err.Error()}
			}
		}
		if err := checkFormat(format); err != nil {
			file.Close()
			return nil, "", noop, err
		}
		return file, format, func() { file.Close() }, nil
	}

	if format == "" {
		switch ct := r.Header.Get("Content-Type"); {
		case strings.HasPrefix(ct, "text/csv"):
			format = team.FormatCSV
		case strings.HasPrefix(ct, "application/json"):
			format = team.FormatJSON
		}
	}
	return r.Body, format, noop, checkFormat(format)
}

func checkFormat(format string) error {
	switch format {
	case team.FormatCSV, team.FormatJSON:
		return nil
	case "":
		return &ErrValidation{Field: "format", Message: "required: csv or json"}
	default:
		return &ErrValidation{Field: "format", Message: "unsupported format " + strconv.Quote(format)}
	}
}

func (s *Server) handleListTeam(w http.ResponseWriter, r *http.Request) {
	members := s.roster.List()
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"members": members,
		"count":   len(members),
	})
}

// handleMemberGaps buckets a roster member's missing skills by priority.
func (s *Server) handleMemberGaps(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	m, ok := s.roster.Get(name)
	if !ok {
		s.writeError(w, &ErrNotFound{Resource: "team member", ID: name})
		return
	}

	resp := map[string]any{
		"member":     m.Name,
		"role":       m.Role,
		"known_role": s.table.Has(m.Role),
		"priorities": skills.SuggestPriorities(s.table.Profile(m.Role), m.Skills, m.YearsExperience),
	}
	if !s.table.Has(m.Role) {
		resp["closest_role"] = s.table.ClosestRole(m.Skills)
	}
	s.jsonResponse(w, http.StatusOK, resp)
}

func (s *Server) handleIngestDocuments(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var req types.DocumentIngestRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if err := req.Validate(); err != nil {
		s.writeError(w, &ErrValidation{Field: "documents", Message: err.Error()})
		return
	}
	if len(req.Metadata) > 0 && len(req.Metadata) != len(req.Documents) {
		s.writeError(w, &ErrValidation{Field: "metadata", Message: "must match the number of documents"})
		return
	}
	if s.store == nil {
		s.writeError(w, unavailable("vector_store", "vector store"))
		return
	}

	if err := s.store.Add(r.Context(), req.Documents, req.Metadata); err != nil {
		s.writeError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"added": len(req.Documents),
		"stats": s.store.Stats(),
	})
}

func (s *Server) handleStoreStats(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.writeError(w, unavailable("vector_store", "vector store"))
		return
	}
	s.jsonResponse(w, http.StatusOK, s.store.Stats())
}

func (s *Server) handleClearStore(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.writeError(w, unavailable("vector_store", "vector store"))
		return
	}
	if err := s.store.Clear(); err != nil {
		s.writeError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "cleared"})
}

func (s *Server) handleSwitchModel(w http.ResponseWriter, r *http.Request) {
	var req ModelSwitchRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	tier, err := llm.ParseTier(req.Model)
	if err != nil {
		s.writeError(w, &ErrValidation{Field: "model", Message: err.Error()})
		return
	}
	if s.pipeline == nil {
		s.writeError(w, unavailable("pipeline", "recommendation pipeline"))
		return
	}

	prev := s.pipeline.Tier().Set(tier)
	s.jsonResponse(w, http.StatusOK, map[string]string{
		"previous": prev.Alias(),
		"current":  tier.Alias(),
		"tier":     string(tier),
	})
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	if s.runs == nil {
		s.writeError(w, unavailable("DATABASE_URL", "run history"))
		return
	}

	q := r.URL.Query()
	filters := db.RunFilters{
		MemberName: q.Get("member"),
		Status:     q.Get("status"),
	}
	if l := q.Get("limit"); l != "" {
		n, err := strconv.Atoi(l)
		if err != nil || n <= 0 {
			s.writeError(w, &ErrValidation{Field: "limit", Message: "must be a positive integer"})
			return
		}
		filters.Limit = n
	}

	runs, err := s.runs.ListRuns(r.Context(), filters)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"runs":  runs,
		"count": len(runs),
	})
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	if s.runs == nil {
		s.writeError(w, unavailable("DATABASE_URL", "run history"))
		return
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.writeError(w, &ErrValidation{Field: "id", Message: "invalid run ID"})
		return
	}

	run, err := s.runs.GetRun(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if run == nil {
		s.writeError(w, &ErrNotFound{Resource: "run", ID: id.String()})
		return
	}

	stages, err := s.runs.ListRunStages(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"run":    run,
		"stages": stages,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{
		"status":       "ok",
		"roles":        s.table.Len(),
		"team_members": s.roster.Len(),
	}
	if s.store != nil {
		resp["documents"] = s.store.Stats().TotalDocuments
	}
	if s.pipeline != nil {
		resp["model"] = s.pipeline.Tier().Get().Alias()
	}
	s.jsonResponse(w, http.StatusOK, resp)
}

// splitList splits a comma-separated query value, dropping blanks.
func splitList(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
