package handlers

import (
	"net/http"

	"studyblossom/internal/middleware"
	"studyblossom/internal/validation"
)

type validateGoalRequest struct {
	GoalName *string `json:"goal_name"`
	Topic    *string `json:"topic"`
	Strict   bool    `json:"strict"`
}

type rejectionView struct {
	Field       string `json:"field"`
	Reason      string `json:"reason"`
	Message     string `json:"message"`
	SuggestHelp bool   `json:"suggest_help"`
	Help        string `json:"help,omitempty"`
}

type validateGoalResponse struct {
	Valid     bool             `json:"valid"`
	Sanitized *validation.Goal `json:"sanitized,omitempty"`
	Errors    []rejectionView  `json:"errors,omitempty"`
}

func rejectionViews(locale string, results ...validation.Result) []rejectionView {
	out := make([]rejectionView, 0, len(results))
	for _, res := range results {
		if !res.Rejected() {
			continue
		}
		v := rejectionView{
			Field:       res.Field.String(),
			Reason:      string(res.Reason),
			Message:     res.Localized(locale),
			SuggestHelp: res.SuggestHelp,
		}
		if res.SuggestHelp {
			v.Help = validation.HelpMessage(res.Field, locale)
		}
		out = append(out, v)
	}
	return out
}

// ValidateGoal checks a goal form. Either field may be omitted to validate
// the other one on its own.
func (a *App) ValidateGoal(w http.ResponseWriter, r *http.Request) {
	var req validateGoalRequest
	if !a.decode(w, r, &req) {
		return
	}
	if req.GoalName == nil && req.Topic == nil {
		a.error(w, http.StatusBadRequest, "missing_fields",
			pick(r, "Envía goal_name, topic o ambos.", "Send goal_name, topic or both."))
		return
	}
	locale := middleware.LocaleFromContext(r.Context())

	if req.GoalName != nil && req.Topic != nil {
		res := validation.ValidateGoal(*req.GoalName, *req.Topic, req.Strict)
		if !res.Valid() {
			a.json(w, http.StatusUnprocessableEntity, validateGoalResponse{
				Errors: rejectionViews(locale, res.Rejections()...),
			})
			return
		}
		a.json(w, http.StatusOK, validateGoalResponse{Valid: true, Sanitized: res.Sanitized})
		return
	}

	var res validation.Result
	sanitized := &validation.Goal{}
	if req.GoalName != nil {
		res = validation.GoalNameRules.Validate(*req.GoalName)
		sanitized.GoalName = validation.SanitizeForAI(res.Text)
	} else {
		res = validation.RulesFor(validation.FieldTopic, req.Strict).Validate(*req.Topic)
		sanitized.Topic = validation.SanitizeForAI(res.Text)
	}
	if res.Rejected() {
		a.json(w, http.StatusUnprocessableEntity, validateGoalResponse{Errors: rejectionViews(locale, res)})
		return
	}
	a.json(w, http.StatusOK, validateGoalResponse{Valid: true, Sanitized: sanitized})
}
