package http_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	api "github.com/kinelab/biomech-tutor/internal/api/http"
	"github.com/kinelab/biomech-tutor/internal/auth"
	"github.com/kinelab/biomech-tutor/internal/dataset"
	"github.com/kinelab/biomech-tutor/internal/tutor"
)

func testRows() []dataset.QuestionRow {
	step1 := dataset.QuestionRow{
		Section:        "Kinematics",
		QuestionNumber: "P1",
		MainQuestion:   "Q1",
		SubQuestion:    "Pick the governing equation.",
		FullQuestion:   "A sprinter accelerates from rest.",
		Solution:       "Apply $v = u + at$.",
		CorrectOption:  2,
		MinValue:       9.5,
		MaxValue:       10.5,
		Units:          "m/s",
	}
	step1.Options = [4]dataset.Option{
		{Text: "$v = at^2$", Feedback: "Check the power of t."},
		{Text: "$v = u + at$", Feedback: "Correct relation."},
		{Text: "https://example.com/opt3.png", Feedback: "Not this diagram."},
		{Text: "", Feedback: ""},
	}
	step2 := step1
	step2.SubQuestion = "Compute the final velocity."
	step2.CorrectOption = 0
	step2.Options = [4]dataset.Option{}
	return []dataset.QuestionRow{step1, step2}
}

type testServer struct {
	srv   *httptest.Server
	token string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ds, _ := dataset.New(testRows())
	reg := tutor.NewRegistry(ds, time.Hour)
	reg.Logf = t.Logf
	tokens := auth.NewTokenService("test-secret")

	r := chi.NewRouter()
	r.Post("/api/sessions", api.CreateSessionHandler(reg, tokens, time.Hour))
	r.Get("/api/sections", api.ListSectionsHandler(ds))
	r.Group(func(pr chi.Router) {
		pr.Use(auth.SessionMiddleware(tokens))
		pr.Get("/api/session", api.GetSessionHandler(reg))
		pr.Post("/api/session/section", api.SelectSectionHandler(reg))
		pr.Post("/api/session/question", api.SelectQuestionHandler(reg))
		pr.Post("/api/session/option", api.SelectOptionHandler(reg))
		pr.Post("/api/session/answer", api.SubmitAnswerHandler(reg))
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return &testServer{srv: srv}
}

func (ts *testServer) do(t *testing.T, method, path string, body any) (*http.Response, []byte) {
	t.Helper()
	var rd *bytes.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		rd = bytes.NewReader(buf)
	} else {
		rd = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, ts.srv.URL+path, rd)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if ts.token != "" {
		req.Header.Set("Authorization", "Bearer "+ts.token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	var out bytes.Buffer
	if _, err := out.ReadFrom(resp.Body); err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, out.Bytes()
}

func (ts *testServer) start(t *testing.T) {
	t.Helper()
	resp, body := ts.do(t, "POST", "/api/sessions", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("create session: status %d: %s", resp.StatusCode, body)
	}
	var created struct {
		SessionID string `json:"session_id"`
		Token     string `json:"token"`
	}
	if err := json.Unmarshal(body, &created); err != nil {
		t.Fatalf("decode session: %v", err)
	}
	if created.SessionID == "" || created.Token == "" {
		t.Fatalf("create session returned %q / %q", created.SessionID, created.Token)
	}
	ts.token = created.Token
}

type eventResp struct {
	State   tutor.Snapshot `json:"state"`
	Effects []tutor.Effect `json:"effects"`
}

func TestSectionsCatalog(t *testing.T) {
	ts := newTestServer(t)
	resp, body := ts.do(t, "GET", "/api/sections", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var out struct {
		Sections []struct {
			Name      string `json:"name"`
			Questions []struct {
				MainQuestion string `json:"main_question"`
				Steps        int    `json:"steps"`
			} `json:"questions"`
		} `json:"sections"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out.Sections) != 1 || out.Sections[0].Name != "Kinematics" {
		t.Fatalf("sections = %+v", out.Sections)
	}
	if q := out.Sections[0].Questions; len(q) != 1 || q[0].MainQuestion != "Q1" || q[0].Steps != 2 {
		t.Errorf("questions = %+v", q)
	}
}

func TestSessionRoutesRequireToken(t *testing.T) {
	ts := newTestServer(t)
	resp, _ := ts.do(t, "GET", "/api/session", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", resp.StatusCode)
	}
}

func TestSelectSection_UnknownIs404(t *testing.T) {
	ts := newTestServer(t)
	ts.start(t)
	resp, _ := ts.do(t, "POST", "/api/session/section", map[string]string{"section": "Optics"})
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestFullWalkthroughOverHTTP(t *testing.T) {
	ts := newTestServer(t)
	ts.start(t)

	// Pick the section; lands on Q1 step 0 with shuffled options.
	resp, body := ts.do(t, "POST", "/api/session/section", map[string]string{"section": "Kinematics"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("select section: status %d: %s", resp.StatusCode, body)
	}
	var ev eventResp
	if err := json.Unmarshal(body, &ev); err != nil {
		t.Fatalf("decode: %v", err)
	}
	q := ev.State.Question
	if q == nil || q.MainQuestion != "Q1" || q.StepIndex != 0 {
		t.Fatalf("state.question = %+v", q)
	}
	if len(q.Options) != 3 {
		t.Fatalf("got %d option cards, want 3", len(q.Options))
	}
	if strings.Contains(string(body), "is_correct") || strings.Contains(string(body), "min_value") {
		t.Fatal("answer data leaked into the client payload")
	}
	if q.Solution != "" {
		t.Fatal("solution leaked before solve")
	}
	var sawImage bool
	for _, o := range q.Options {
		if o.IsImage {
			sawImage = true
		}
	}
	if !sawImage {
		t.Error("image option not flagged as image")
	}
	if len(q.UnitsChoices) == 0 || q.UnitsChoices[0] != tutor.UnitsSentinel {
		t.Errorf("units choices = %v, want sentinel first", q.UnitsChoices)
	}

	// Click cards until the correct one is hit; wrong clicks leave step 0.
	for i := 0; ; i++ {
		if i >= 3 {
			t.Fatal("no option advanced the step")
		}
		resp, body = ts.do(t, "POST", "/api/session/option", map[string]int{"displayed_index": i})
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("option %d: status %d: %s", i, resp.StatusCode, body)
		}
		if err := json.Unmarshal(body, &ev); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if ev.State.Question.StepIndex == 1 {
			break
		}
	}

	// A stale click from the previous step is ignored with unchanged state.
	// Decode into a fresh struct: the reply omits effects entirely, and an
	// unmarshal into the reused ev would keep the prior click's effects.
	resp, body = ts.do(t, "POST", "/api/session/option", map[string]int{"displayed_index": 2})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("stale option: status %d", resp.StatusCode)
	}
	var stale eventResp
	if err := json.Unmarshal(body, &stale); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if stale.State.Question.StepIndex != 1 || len(stale.Effects) != 0 {
		t.Fatalf("stale click changed state: %+v", stale)
	}

	// Numeric correct but no units selected.
	resp, body = ts.do(t, "POST", "/api/session/answer",
		map[string]any{"value": 10.0, "units": tutor.UnitsSentinel})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("answer: status %d", resp.StatusCode)
	}
	if err := json.Unmarshal(body, &ev); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if ev.State.Question.ShowSolution {
		t.Fatal("solution shown without units")
	}
	if ev.State.Feedback != tutor.MsgUnitsMissing {
		t.Errorf("feedback = %q, want units prompt", ev.State.Feedback)
	}

	// Fully correct submission reveals the solution.
	resp, body = ts.do(t, "POST", "/api/session/answer",
		map[string]any{"value": 10.0, "units": "m/s"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("answer: status %d", resp.StatusCode)
	}
	if err := json.Unmarshal(body, &ev); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !ev.State.Question.ShowSolution {
		t.Fatal("solution not shown after fully correct answer")
	}
	if ev.State.Question.Solution == "" {
		t.Fatal("solution text missing after solve")
	}
	if ev.State.Question.CombinedAnswer != "10 m/s" {
		t.Errorf("combined answer = %q, want \"10 m/s\"", ev.State.Question.CombinedAnswer)
	}
	var sawSolutionRender bool
	for _, e := range ev.Effects {
		if e.Type == tutor.EffectRender && e.Region == tutor.RegionSolution {
			sawSolutionRender = true
		}
	}
	if !sawSolutionRender {
		t.Error("no solution render hint emitted")
	}
}
