package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/hyperengineering/lexicon/internal/engine"
	"github.com/hyperengineering/lexicon/internal/testutil"
	"github.com/hyperengineering/lexicon/internal/types"
	"github.com/hyperengineering/lexicon/internal/vault"
)

// executeCmd executes a command against vaultRoot with captured output.
func executeCmd(t *testing.T, vaultRoot string, args ...string) (stdout, stderr string, err error) {
	t.Helper()

	// Keep the developer's config file out of the test.
	t.Setenv("LEXICON_CONFIG_PATH", filepath.Join(t.TempDir(), "absent.yaml"))
	t.Setenv("LEXICON_BACKUP_BUCKET", "")

	// Reset package-level flag variables to their defaults.
	// Cobra parses into these variables, so stale values from previous tests
	// would leak if not reset.
	configPath = ""
	vaultOverride = ""
	jsonOutput = false
	noRender = false
	renderStdout = false
	listSort = ""
	listUnlearnedOnly = false

	fullArgs := append(args, "--vault", vaultRoot)

	outBuf := new(bytes.Buffer)
	errBuf := new(bytes.Buffer)

	rootCmd.SetOut(outBuf)
	rootCmd.SetErr(errBuf)
	rootCmd.SetArgs(fullArgs)

	err = rootCmd.Execute()

	rootCmd.SetOut(nil)
	rootCmd.SetErr(nil)
	rootCmd.SetArgs(nil)

	return outBuf.String(), errBuf.String(), err
}

// seedVault writes a Kindle image holding lookups and a small dictionary
// into a fresh vault and returns its root.
func seedVault(t *testing.T, lookups ...types.LookupEvent) string {
	t.Helper()
	root := t.TempDir()
	dir, err := vault.Open(root)
	if err != nil {
		t.Fatal(err)
	}
	settings := engine.DefaultSettings()
	if err := dir.WriteBinary(settings.StorePath(), testutil.KindleImage(t, lookups...)); err != nil {
		t.Fatal(err)
	}
	if err := dir.WriteText(settings.DictionaryPath(), "word,definition\nephemeral,<i>adj.</i> lasting a short time\n"); err != nil {
		t.Fatal(err)
	}
	return root
}

var twoLookups = []types.LookupEvent{
	{Word: "ephemeral", Context: "an ephemeral joy", SourceTitle: "Book A"},
	{Word: "cat", Context: "the cat sat", SourceTitle: "Book B"},
}

func documentPath(root string) string {
	return filepath.Join(root, filepath.FromSlash(engine.DefaultSettings().DocumentPath()))
}

func listWords(t *testing.T, root string) types.WordsResponse {
	t.Helper()
	stdout, _, err := executeCmd(t, root, "list", "--json")
	if err != nil {
		t.Fatalf("list error = %v", err)
	}
	var resp types.WordsResponse
	if err := json.Unmarshal([]byte(stdout), &resp); err != nil {
		t.Fatalf("parse list output %q: %v", stdout, err)
	}
	return resp
}

func TestSyncCommand(t *testing.T) {
	root := seedVault(t, twoLookups...)

	stdout, _, err := executeCmd(t, root, "sync")
	if err != nil {
		t.Fatalf("sync error = %v", err)
	}
	if !strings.Contains(stdout, "2 new words added") {
		t.Errorf("stdout = %q, want summary", stdout)
	}
	if !strings.Contains(stdout, "0 of 2 words learned (0%)") {
		t.Errorf("stdout = %q, want progress", stdout)
	}

	doc, err := os.ReadFile(documentPath(root))
	if err != nil {
		t.Fatalf("document not written: %v", err)
	}
	if !strings.Contains(string(doc), "## ephemeral") {
		t.Errorf("document missing record:\n%s", doc)
	}
}

func TestSyncCommand_JSON(t *testing.T) {
	root := seedVault(t, twoLookups...)

	stdout, _, err := executeCmd(t, root, "sync", "--json")
	if err != nil {
		t.Fatal(err)
	}
	var result types.SyncResult
	if err := json.Unmarshal([]byte(stdout), &result); err != nil {
		t.Fatalf("parse %q: %v", stdout, err)
	}
	if result.NewWords != 2 || result.Definitions != 1 || result.RunID == "" {
		t.Errorf("result = %+v", result)
	}
}

func TestSyncCommand_MissingStore(t *testing.T) {
	root := t.TempDir()

	_, stderr, err := executeCmd(t, root, "sync")
	if err == nil {
		t.Fatal("sync without a store should fail")
	}
	if !strings.Contains(stderr, "Vocabulary database or dictionary file not found.") {
		t.Errorf("stderr = %q, want notice", stderr)
	}
	if _, statErr := os.Stat(documentPath(root)); !os.IsNotExist(statErr) {
		t.Error("failed sync must not write the document")
	}
}

func TestLearnAndUnlearnCommands(t *testing.T) {
	root := seedVault(t, twoLookups...)
	if _, _, err := executeCmd(t, root, "sync"); err != nil {
		t.Fatal(err)
	}

	stdout, _, err := executeCmd(t, root, "learn", "cat", "ephemeral")
	if err != nil {
		t.Fatalf("learn error = %v", err)
	}
	if !strings.Contains(stdout, "✓ cat marked learned") {
		t.Errorf("stdout = %q", stdout)
	}

	if _, _, err := executeCmd(t, root, "unlearn", "ephemeral"); err != nil {
		t.Fatalf("unlearn error = %v", err)
	}

	resp := listWords(t, root)
	if resp.Progress != (types.Progress{Learned: 1, Total: 2}) {
		t.Errorf("progress = %+v, want 1 of 2", resp.Progress)
	}

	doc, err := os.ReadFile(documentPath(root))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(doc), `data-word="cat" checked`) {
		t.Errorf("document not re-rendered after learn:\n%s", doc)
	}
}

func TestLearnCommand_UnknownWord(t *testing.T) {
	root := seedVault(t, twoLookups...)
	if _, _, err := executeCmd(t, root, "sync"); err != nil {
		t.Fatal(err)
	}

	_, stderr, err := executeCmd(t, root, "learn", "ghost")
	if err == nil {
		t.Fatal("learn of unknown word should fail")
	}
	if !strings.Contains(stderr, "Word not found in vocabulary.") {
		t.Errorf("stderr = %q", stderr)
	}
}

func TestApplyCommand_FromFile(t *testing.T) {
	root := seedVault(t, twoLookups...)
	if _, _, err := executeCmd(t, root, "sync"); err != nil {
		t.Fatal(err)
	}

	doc, err := os.ReadFile(documentPath(root))
	if err != nil {
		t.Fatal(err)
	}
	edited := strings.Replace(string(doc), `data-word="cat"`, `data-word="cat" checked`, 1)
	editedPath := filepath.Join(t.TempDir(), "edited.md")
	if err := os.WriteFile(editedPath, []byte(edited), 0o644); err != nil {
		t.Fatal(err)
	}

	stdout, _, err := executeCmd(t, root, "apply", editedPath)
	if err != nil {
		t.Fatalf("apply error = %v", err)
	}
	if !strings.Contains(stdout, "1 records updated") {
		t.Errorf("stdout = %q", stdout)
	}

	resp := listWords(t, root)
	if resp.Progress.Learned != 1 {
		t.Errorf("learned = %d, want 1", resp.Progress.Learned)
	}
}

func TestApplyCommand_VaultDocumentUnchanged(t *testing.T) {
	root := seedVault(t, twoLookups...)
	if _, _, err := executeCmd(t, root, "sync"); err != nil {
		t.Fatal(err)
	}

	stdout, _, err := executeCmd(t, root, "apply")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(stdout, "0 records updated") {
		t.Errorf("stdout = %q", stdout)
	}
}

func TestRenderCommand_Stdout(t *testing.T) {
	root := seedVault(t, twoLookups...)
	if _, _, err := executeCmd(t, root, "sync"); err != nil {
		t.Fatal(err)
	}

	stdout, _, err := executeCmd(t, root, "render", "--stdout")
	if err != nil {
		t.Fatal(err)
	}
	onDisk, err := os.ReadFile(documentPath(root))
	if err != nil {
		t.Fatal(err)
	}
	if stdout != string(onDisk) {
		t.Error("render --stdout differs from the written document")
	}
}

func TestListCommand_Table(t *testing.T) {
	root := seedVault(t, twoLookups...)
	if _, _, err := executeCmd(t, root, "sync"); err != nil {
		t.Fatal(err)
	}

	stdout, _, err := executeCmd(t, root, "list")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"WORD", "ephemeral", "adj. lasting a short time", "Book B", "0 of 2 words learned (0%)"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("list output missing %q:\n%s", want, stdout)
		}
	}
	if strings.Contains(stdout, "<i>") {
		t.Errorf("definition markup not stripped:\n%s", stdout)
	}
}

func TestListCommand_UnlearnedSort(t *testing.T) {
	root := seedVault(t, twoLookups...)
	if _, _, err := executeCmd(t, root, "sync"); err != nil {
		t.Fatal(err)
	}
	if _, _, err := executeCmd(t, root, "learn", "cat"); err != nil {
		t.Fatal(err)
	}

	stdout, _, err := executeCmd(t, root, "list", "--json", "--unlearned")
	if err != nil {
		t.Fatal(err)
	}
	var resp types.WordsResponse
	if err := json.Unmarshal([]byte(stdout), &resp); err != nil {
		t.Fatal(err)
	}
	var got []string
	for _, w := range resp.Words {
		got = append(got, w.Word)
	}
	if diff := cmp.Diff([]string{"ephemeral"}, got); diff != "" {
		t.Errorf("words mismatch (-want +got):\n%s", diff)
	}
}

func TestListCommand_InvalidSort(t *testing.T) {
	root := seedVault(t, twoLookups...)
	if _, _, err := executeCmd(t, root, "sync"); err != nil {
		t.Fatal(err)
	}

	if _, _, err := executeCmd(t, root, "list", "--sort", "alphabetical"); err == nil {
		t.Error("invalid sort order should fail")
	}
}

func TestImportCommands(t *testing.T) {
	root := t.TempDir()
	src := t.TempDir()

	storeFile := filepath.Join(src, "vocab.db")
	if err := os.WriteFile(storeFile, testutil.KindleImage(t, twoLookups...), 0o644); err != nil {
		t.Fatal(err)
	}
	dictFile := filepath.Join(src, "words.csv")
	if err := os.WriteFile(dictFile, []byte("word,definition\ncat,a feline\nephemeral,short-lived\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	stdout, _, err := executeCmd(t, root, "import", "store", storeFile)
	if err != nil {
		t.Fatalf("import store error = %v", err)
	}
	if !strings.Contains(stdout, "Imported vocab.db") {
		t.Errorf("stdout = %q", stdout)
	}

	stdout, _, err = executeCmd(t, root, "import", "dictionary", dictFile)
	if err != nil {
		t.Fatalf("import dictionary error = %v", err)
	}
	if !strings.Contains(stdout, "Imported 2 dictionary entries") {
		t.Errorf("stdout = %q", stdout)
	}

	stdout, _, err = executeCmd(t, root, "sync", "--json")
	if err != nil {
		t.Fatalf("sync after import error = %v", err)
	}
	var result types.SyncResult
	if err := json.Unmarshal([]byte(stdout), &result); err != nil {
		t.Fatal(err)
	}
	if result.NewWords != 2 || result.Definitions != 2 {
		t.Errorf("result = %+v", result)
	}

	// A second store import merges and keeps learned flags.
	if _, _, err := executeCmd(t, root, "learn", "cat"); err != nil {
		t.Fatal(err)
	}
	stdout, _, err = executeCmd(t, root, "import", "store", storeFile)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(stdout, "Merged vocab.db") {
		t.Errorf("stdout = %q", stdout)
	}
	if resp := listWords(t, root); resp.Progress.Learned != 1 {
		t.Errorf("learned flags lost on merge: %+v", resp.Progress)
	}
}

func TestImportCommand_UnsupportedFile(t *testing.T) {
	root := t.TempDir()
	notes := filepath.Join(t.TempDir(), "notes.txt")
	if err := os.WriteFile(notes, []byte("hello"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, stderr, err := executeCmd(t, root, "import", "dictionary", notes)
	if err == nil {
		t.Fatal("importing a .txt dictionary should fail")
	}
	if !strings.Contains(stderr, "Unsupported file type.") {
		t.Errorf("stderr = %q", stderr)
	}
}

func TestPreview(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"a feline", "a feline"},
		{"<b>a</b>   feline\nanimal", "a feline animal"},
		{strings.Repeat("x", 60), strings.Repeat("x", previewLength-1) + "…"},
	}
	for _, tt := range tests {
		if got := preview(tt.in); got != tt.want {
			t.Errorf("preview(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
