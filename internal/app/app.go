package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/a-h/templ"
	"github.com/felixbrock/mochagen/internal/domain"
)

type Config struct {
	Port         string
	Temperatures []float64
}

type ReportRepo interface {
	Snapshot() domain.Report
}

type ComponentBuilder struct {
	Index   func() templ.Component
	Loading func(msg string) templ.Component
	Report  func(report domain.Report) templ.Component
	Error   func(code int, title string, msg string) templ.Component
}

type App struct {
	Generator        Generator
	ReportRepo       ReportRepo
	ComponentBuilder ComponentBuilder
	Config           Config
}

type generationReq struct {
	Functions []domain.APIFunction `json:"functions"`
}

func (a App) index(w http.ResponseWriter, r *http.Request) *ComponentResponse {
	return &ComponentResponse{Component: a.ComponentBuilder.Index(), Code: 200, Message: "OK", ContentType: "text/html"}
}

func (a App) report(w http.ResponseWriter, r *http.Request) *ComponentResponse {
	return &ComponentResponse{Component: a.ComponentBuilder.Report(a.ReportRepo.Snapshot()), Code: 200, Message: "OK", ContentType: "text/html"}
}

func (a App) errResponse(ctx errCtx, err error) *ComponentResponse {
	return &ComponentResponse{
		Component:   a.ComponentBuilder.Error(ctx.Code, ctx.Title, ctx.Msg),
		Code:        ctx.Code,
		Message:     ctx.Title,
		ContentType: "text/html",
		Error:       err,
	}
}

func (a App) handleGenerationReq(w http.ResponseWriter, r *http.Request) *ComponentResponse {
	if r.Method != "POST" {
		return a.errResponse(get405(), nil)
	}

	content, err := Read(r.Body)

	if err != nil {
		return a.errResponse(get400(), err)
	}

	reqBody, err := ReadJSON[generationReq](content)

	if err != nil || len(reqBody.Functions) == 0 {
		return a.errResponse(get400(), err)
	}

	// Runs for distinct functions share no state, so each gets its own
	// goroutine, worklist and dedup map.
	for i := 0; i < len(reqBody.Functions); i++ {
		fn := reqBody.Functions[i]
		go a.Generator.Generate(context.Background(), fn)
	}

	msg := fmt.Sprintf("Generating tests for %d functions...", len(reqBody.Functions))
	return &ComponentResponse{Component: a.ComponentBuilder.Loading(msg), Code: 200, Message: "OK", ContentType: "text/html"}
}

func (a App) handleReportReq(w http.ResponseWriter, r *http.Request) {
	w.Header().Add("Content-Type", "application/json")

	err := json.NewEncoder(w).Encode(a.ReportRepo.Snapshot())

	if err != nil {
		slog.Error(fmt.Sprintf("Error occured: %s", err.Error()))
		http.Error(w, "failed to encode report", 500)
	}
}

func (a App) Start() error {
	http.Handle("/", ComponentHandler(a.index))
	http.Handle("/report", ComponentHandler(a.report))
	http.Handle("/api/generation", ComponentHandler(a.handleGenerationReq))
	http.HandleFunc("/api/report", a.handleReportReq)

	slog.Info(fmt.Sprintf("App running on %s...", a.Config.Port))
	return http.ListenAndServe(fmt.Sprintf(":%s", a.Config.Port), nil)
}
