package attention_test

import (
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/kylesnowschwartz/copilot-attnwatch/attention"
	"github.com/kylesnowschwartz/copilot-attnwatch/status"
)

func TestScanAndFilter_WatermarkExcludesOlderConversations(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root+"/old.jsonl", waitingForUserBody)
	writeFile(t, root+"/new.jsonl", waitingForUserBody)

	old := time.Now().Add(-1 * time.Hour)
	if err := chtimes(root+"/old.jsonl", old); err != nil {
		t.Fatal(err)
	}

	startedAt := time.Now().Add(-30 * time.Minute)
	got := attention.ScanAndFilter(root, startedAt, zerolog.Nop())

	for _, c := range got {
		if c.ID == "old" {
			t.Errorf("watermark should have excluded %q (mtime before startedAt)", c.ID)
		}
	}
	foundNew := false
	for _, c := range got {
		if c.ID == "new" {
			foundNew = true
		}
	}
	if !foundNew {
		t.Errorf("expected %q to survive the watermark filter, got %+v", "new", got)
	}
}

func TestScanAndFilter_OnlyAttentionRequiredCodesSurvive(t *testing.T) {
	root := t.TempDir()
	// user-waiting (not attention-required): single user-message only.
	writeFile(t, root+"/not-required.jsonl", `{"type":"user-message"}`+"\n")
	// waiting-for-user (attention-required): completed turn with a final reply.
	writeFile(t, root+"/required.jsonl",
		`{"type":"user-message"}`+"\n"+
			`{"type":"assistant-turn-start"}`+"\n"+
			`{"type":"assistant-message","data":{"content":"done"}}`+"\n"+
			`{"type":"assistant-turn-end"}`+"\n")

	got := attention.ScanAndFilter(root, time.Time{}, zerolog.Nop())
	if len(got) != 1 || got[0].ID != "required" {
		t.Fatalf("got %+v, want only %q", got, "required")
	}
	if got[0].Status.Code != status.CodeWaitingForUser {
		t.Errorf("Code = %v", got[0].Status.Code)
	}
}

func TestScanAndFilter_SortedByLastModifiedDescending(t *testing.T) {
	root := t.TempDir()
	mk := func(id string, content string, mtime time.Time) {
		writeFile(t, root+"/"+id+".jsonl", content)
		if err := chtimes(root+"/"+id+".jsonl", mtime); err != nil {
			t.Fatal(err)
		}
	}
	attentionBody := `{"type":"user-message"}` + "\n" +
		`{"type":"assistant-turn-start"}` + "\n" +
		`{"type":"assistant-message","data":{"content":"x"}}` + "\n" +
		`{"type":"assistant-turn-end"}` + "\n"

	now := time.Now()
	mk("a", attentionBody, now.Add(-3*time.Minute))
	mk("b", attentionBody, now.Add(-1*time.Minute))
	mk("c", attentionBody, now.Add(-2*time.Minute))

	got := attention.ScanAndFilter(root, time.Time{}, zerolog.Nop())
	if len(got) != 3 {
		t.Fatalf("len(got) = %d, want 3", len(got))
	}
	if got[0].ID != "b" || got[1].ID != "c" || got[2].ID != "a" {
		t.Fatalf("order = %v, %v, %v; want b, c, a", got[0].ID, got[1].ID, got[2].ID)
	}
}
