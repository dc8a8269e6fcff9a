package submit

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sync"
	"testing"

	"github.com/eventops/sponsorgate/internal/model"
	"github.com/eventops/sponsorgate/internal/stamp"
)

type fakeTokens struct {
	mu     sync.Mutex
	status map[string]string
}

func newFakeTokens(values ...string) *fakeTokens {
	f := &fakeTokens{status: make(map[string]string)}
	for _, v := range values {
		f.status[v] = model.TokenNotUsed
	}
	return f
}

func (f *fakeTokens) Consume(value, submitter string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.status[value] != model.TokenNotUsed {
		return false, nil
	}
	f.status[value] = model.TokenUsed
	return true, nil
}

func (f *fakeTokens) state(value string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.status[value]
}

type fakeStamper struct {
	fail bool
}

func (f *fakeStamper) Stamp(kind stamp.Kind, fields model.SubmissionFields, sig []byte) ([]byte, error) {
	if f.fail {
		return nil, errors.New("template corrupt")
	}
	return []byte("pdf:" + string(kind) + ":" + fields.Name), nil
}

type dispatched struct {
	name, folder, contentType string
}

type fakeDispatcher struct {
	mu    sync.Mutex
	calls []dispatched
}

func (f *fakeDispatcher) Dispatch(name, folder, contentType string, data []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, dispatched{name, folder, contentType})
}

type fakeDownloads struct {
	mu    sync.Mutex
	files map[string][]byte
}

func (f *fakeDownloads) Put(filename string, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.files == nil {
		f.files = make(map[string][]byte)
	}
	f.files[filename] = data
	return nil
}

func validRequest(token string) Request {
	return Request{
		Token: token,
		Fields: model.SubmissionFields{
			Name:          "Jane Sponsor",
			Company:       "Acme Corp",
			Designation:   "Director",
			Amount:        "5000",
			PaymentMethod: "UPI",
			CollectedBy:   "Ravi",
			CollectedOn:   "2024-05-13",
		},
		Screenshot: &Upload{
			Filename:    "payment.png",
			ContentType: "image/png",
			Data:        []byte("fake image bytes"),
		},
	}
}

func newOrchestrator(tokens *fakeTokens) (*Orchestrator, *fakeDispatcher, *fakeDownloads) {
	dispatcher := &fakeDispatcher{}
	downloads := &fakeDownloads{}
	o := &Orchestrator{
		Tokens:         tokens,
		Stamper:        &fakeStamper{},
		Dispatcher:     dispatcher,
		Downloads:      downloads,
		UserFolder:     "copies/user",
		OfficialFolder: "copies/official",
		MaxFileBytes:   2 * 1024 * 1024,
	}
	return o, dispatcher, downloads
}

var receiptPattern = regexp.MustCompile(`^SPONSOR-[0-9A-F]{8}$`)

func TestSubmitSuccess(t *testing.T) {
	tokens := newFakeTokens("acme_aabbccdd")
	o, dispatcher, downloads := newOrchestrator(tokens)

	receipt, err := o.Submit(context.Background(), validRequest("acme_aabbccdd"))
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if !receiptPattern.MatchString(receipt.SubmissionID) {
		t.Errorf("submission ID %q does not match SPONSOR-[0-9A-F]{8}", receipt.SubmissionID)
	}
	wantFilename := "Jane_Sponsor_" + receipt.SubmissionID + ".pdf"
	if receipt.Filename != wantFilename {
		t.Errorf("filename = %q, want %q", receipt.Filename, wantFilename)
	}

	if got := downloads.files[receipt.Filename]; string(got) != "pdf:user:Jane Sponsor" {
		t.Errorf("stored user copy = %q", got)
	}
	if tokens.state("acme_aabbccdd") != model.TokenUsed {
		t.Error("token not consumed after successful submit")
	}

	if len(dispatcher.calls) != 3 {
		t.Fatalf("dispatched %d artifacts, want 3", len(dispatcher.calls))
	}
	if dispatcher.calls[0].folder != "copies/user" {
		t.Errorf("user copy folder = %q", dispatcher.calls[0].folder)
	}
	screenshot := dispatcher.calls[2]
	if screenshot.folder != "copies/official" || screenshot.contentType != "image/png" {
		t.Errorf("screenshot dispatch = %+v", screenshot)
	}
	wantShot := "Jane_Sponsor_" + receipt.SubmissionID + "_screenshot.png"
	if screenshot.name != wantShot {
		t.Errorf("screenshot name = %q, want %q", screenshot.name, wantShot)
	}
}

// Two near-simultaneous submissions with one token: exactly one succeeds,
// the other gets the spent-link outcome.
func TestSubmitDoubleSpend(t *testing.T) {
	tokens := newFakeTokens("acme_aabbccdd")
	o, _, _ := newOrchestrator(tokens)

	results := make(chan error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := o.Submit(context.Background(), validRequest("acme_aabbccdd"))
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var successes, spent int
	for err := range results {
		switch {
		case err == nil:
			successes++
		case errors.Is(err, ErrLinkSpent):
			spent++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if successes != 1 || spent != 1 {
		t.Errorf("got %d successes and %d spent-link failures, want 1 and 1", successes, spent)
	}
}

// A malformed date fails validation without touching the token; the next
// attempt with a corrected form succeeds.
func TestSubmitBadDateLeavesTokenFresh(t *testing.T) {
	tokens := newFakeTokens("acme_aabbccdd")
	o, _, _ := newOrchestrator(tokens)

	req := validRequest("acme_aabbccdd")
	req.Fields.CollectedOn = "13/05/2024"
	_, err := o.Submit(context.Background(), req)

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
	if verr.Message != "Collection date must be in YYYY-MM-DD format." {
		t.Errorf("message = %q", verr.Message)
	}
	if tokens.state("acme_aabbccdd") != model.TokenNotUsed {
		t.Fatal("token consumed by a validation failure")
	}

	if _, err := o.Submit(context.Background(), validRequest("acme_aabbccdd")); err != nil {
		t.Errorf("follow-up submit failed: %v", err)
	}
}

func TestSubmitOversizedScreenshot(t *testing.T) {
	tokens := newFakeTokens("acme_aabbccdd")
	o, _, _ := newOrchestrator(tokens)

	req := validRequest("acme_aabbccdd")
	req.Screenshot.Data = make([]byte, 3*1024*1024)
	_, err := o.Submit(context.Background(), req)

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
	if tokens.state("acme_aabbccdd") != model.TokenNotUsed {
		t.Error("token consumed before the size check")
	}
}

func TestSubmitValidationMessages(t *testing.T) {
	tokens := newFakeTokens("acme_aabbccdd")
	o, _, _ := newOrchestrator(tokens)

	cases := []struct {
		name   string
		mutate func(*Request)
		want   string
	}{
		{"missing name", func(r *Request) { r.Fields.Name = "" }, "Name is required."},
		{"missing collector", func(r *Request) { r.Fields.CollectedBy = "" }, "Collected by is required."},
		{"missing screenshot", func(r *Request) { r.Screenshot = nil }, "Payment screenshot is required."},
		{"bad mime", func(r *Request) { r.Screenshot.ContentType = "image/gif" }, "Only JPEG or PNG images are allowed."},
		{"bad signature mime", func(r *Request) {
			r.Signature = &Upload{Filename: "sig.bmp", ContentType: "image/bmp", Data: []byte("x")}
		}, "Only JPEG or PNG images are allowed."},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := validRequest("acme_aabbccdd")
			tc.mutate(&req)
			_, err := o.Submit(context.Background(), req)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("err = %v, want ValidationError", err)
			}
			if verr.Message != tc.want {
				t.Errorf("message = %q, want %q", verr.Message, tc.want)
			}
		})
	}
}

// With the default consume-first ordering, a stamping failure after the
// consume leaves the token spent with no artifact. That tradeoff is the
// configured default; the inverse ordering is covered below.
func TestStampFailureAfterConsume(t *testing.T) {
	tokens := newFakeTokens("acme_aabbccdd")
	o, _, downloads := newOrchestrator(tokens)
	o.Stamper = &fakeStamper{fail: true}

	_, err := o.Submit(context.Background(), validRequest("acme_aabbccdd"))
	if err == nil {
		t.Fatal("submit succeeded with failing stamper")
	}
	if tokens.state("acme_aabbccdd") != model.TokenUsed {
		t.Error("token not consumed; consume-first ordering broken")
	}
	if len(downloads.files) != 0 {
		t.Error("artifact persisted despite stamp failure")
	}
}

func TestStampFailureGenerateFirst(t *testing.T) {
	tokens := newFakeTokens("acme_aabbccdd")
	o, _, _ := newOrchestrator(tokens)
	o.Stamper = &fakeStamper{fail: true}
	o.ConsumeAfterGenerate = true

	_, err := o.Submit(context.Background(), validRequest("acme_aabbccdd"))
	if err == nil {
		t.Fatal("submit succeeded with failing stamper")
	}
	if tokens.state("acme_aabbccdd") != model.TokenNotUsed {
		t.Error("token consumed despite generate-first ordering")
	}
}

func TestSanitizeName(t *testing.T) {
	cases := []struct{ in, want string }{
		{"Jane Sponsor", "Jane_Sponsor"},
		{"ACME-42 Pvt. Ltd.", "ACME_42_Pvt__Ltd_"},
		{"", "Sponsor"},
		{"already_clean", "already_clean"},
	}
	for _, tc := range cases {
		if got := SanitizeName(tc.in); got != tc.want {
			t.Errorf("SanitizeName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestDeriveFilename(t *testing.T) {
	a := DeriveFilename("Jane Sponsor", "SPONSOR-DEADBEEF")
	b := DeriveFilename("Jane Sponsor", "SPONSOR-DEADBEEF")
	if a != b {
		t.Errorf("filename not deterministic: %q vs %q", a, b)
	}
	if c := DeriveFilename("Jane Sponsor", "SPONSOR-CAFEBABE"); c == a {
		t.Error("different submission IDs produced the same filename")
	}
}

func TestSubmissionIDUniqueness(t *testing.T) {
	seen := make(map[string]bool, 5000)
	for i := 0; i < 5000; i++ {
		id, err := NewSubmissionID()
		if err != nil {
			t.Fatalf("new submission id: %v", err)
		}
		if !receiptPattern.MatchString(id) {
			t.Fatalf("id %q does not match pattern", id)
		}
		name := DeriveFilename(fmt.Sprintf("Sponsor %d", i%10), id)
		if seen[name] {
			t.Fatalf("filename collision at iteration %d: %s", i, name)
		}
		seen[name] = true
	}
}
