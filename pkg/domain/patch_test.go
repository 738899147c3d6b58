package domain

import (
	"encoding/json"
	"testing"
)

func TestUserPatchAppliesOnlyPresentFields(t *testing.T) {
	u := User{Name: "Ana", Email: "ana@example.com", Points: 7, Role: RoleUser}
	points := 12
	role := RoleAdmin
	UserPatch{Points: &points, Role: &role}.Apply(&u)

	if u.Points != 12 || u.Role != RoleAdmin {
		t.Fatalf("patched fields not applied: %+v", u)
	}
	if u.Name != "Ana" || u.Email != "ana@example.com" {
		t.Fatalf("absent fields must stay untouched: %+v", u)
	}
}

func TestTaskPatchReplacesListsWholesale(t *testing.T) {
	task := Task{Title: "Sweep", AssignedTo: []string{"u1", "u2"}, Tags: []string{"cleaning"}}
	assigned := []string{"u3"}
	empty := []string{}
	TaskPatch{AssignedTo: &assigned, Tags: &empty}.Apply(&task)

	if len(task.AssignedTo) != 1 || task.AssignedTo[0] != "u3" {
		t.Fatalf("assigned list must be replaced: %+v", task.AssignedTo)
	}
	if len(task.Tags) != 0 {
		t.Fatalf("empty list must clear stored list: %+v", task.Tags)
	}

	// The applied copy must not alias the caller's slice.
	assigned[0] = "mutated"
	if task.AssignedTo[0] != "u3" {
		t.Fatalf("patch must copy list contents")
	}
}

func TestTaskPatchCopiesPhoto(t *testing.T) {
	photo := TaskPhoto{URL: "tasks/t1/photo-1", UploadedBy: "u1"}
	var task Task
	TaskPatch{Photo: &photo}.Apply(&task)

	photo.Approved = true
	if task.Photo == nil || task.Photo.Approved {
		t.Fatalf("photo must be copied, not aliased: %+v", task.Photo)
	}
}

func TestMessagePatchCopiesReactions(t *testing.T) {
	reactions := map[string][]string{"👍": {"u1"}}
	var msg Message
	MessagePatch{Reactions: &reactions}.Apply(&msg)

	reactions["👍"] = append(reactions["👍"], "u2")
	if len(msg.Reactions["👍"]) != 1 {
		t.Fatalf("reactions must be deep copied: %+v", msg.Reactions)
	}
}

func TestPatchJSONOmitsAbsentFields(t *testing.T) {
	name := "Bea"
	raw, err := json.Marshal(UserPatch{Name: &name})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(raw) != `{"name":"Bea"}` {
		t.Fatalf("absent fields must be omitted, got %s", raw)
	}
}

func TestMergePatchTopLevel(t *testing.T) {
	merged, err := MergePatch(
		json.RawMessage(`{"name":"Ana","points":5,"role":"user"}`),
		json.RawMessage(`{"points":12}`),
	)
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	var got map[string]any
	if err := json.Unmarshal(merged, &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got["name"] != "Ana" || got["points"] != float64(12) || got["role"] != "user" {
		t.Fatalf("merge mismatch: %+v", got)
	}
}
