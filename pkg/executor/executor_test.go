package executor

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/execq/execq/pkg/job"
)

func echoRegistry() job.Registry {
	return job.Registry{
		1: job.NewInterpretedRecipe("sh", func(src string) string {
			return "cat " + src
		}, 5*time.Second),
		2: job.NewInterpretedRecipe("sh", func(src string) string {
			return "sleep 5"
		}, 5*time.Second),
		3: job.NewCompiledRecipe("c",
			func(src string) string { return "echo 'error: expected expression' >&2; false" },
			func(src string) string { return "true" },
			5*time.Second),
	}
}

func execqTempDirs() map[string]bool {
	entries, _ := os.ReadDir(os.TempDir())
	dirs := map[string]bool{}
	for _, e := range entries {
		if e.IsDir() && strings.HasPrefix(e.Name(), "execq-job-") {
			dirs[e.Name()] = true
		}
	}
	return dirs
}

func TestExecutor_Completed(t *testing.T) {
	ex := New(echoRegistry(), nil)
	j := job.NewJob("tok-1", job.Input{
		SourceCode: "hello world\n",
		LanguageID: 1,
		ProblemID:  "p1",
	})

	res, err := ex.Execute(context.Background(), j)
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	if res.Token != j.Token {
		t.Errorf("expected token %q, got %q", j.Token, res.Token)
	}
	if res.Status != job.StatusCompleted {
		t.Errorf("expected status completed, got %s (stderr=%q)", res.Status, res.Stderr)
	}
	if res.ExitCode != 0 {
		t.Errorf("expected exit code 0, got %d", res.ExitCode)
	}
	if res.Stdout != "hello world\n" {
		t.Errorf("expected stdout %q, got %q", "hello world\n", res.Stdout)
	}
}

func TestExecutor_Timeout(t *testing.T) {
	ex := New(echoRegistry(), nil)
	j := job.NewJob("tok-2", job.Input{
		SourceCode: "irrelevant",
		LanguageID: 2,
		ProblemID:  "p2",
		TimeoutMS:  500,
	})

	res, err := ex.Execute(context.Background(), j)
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	if res.Status != job.StatusTimeout {
		t.Errorf("expected status timeout, got %s", res.Status)
	}
	if res.ExitCode != job.ExitTimeout {
		t.Errorf("expected exit code %d, got %d", job.ExitTimeout, res.ExitCode)
	}
	if res.ExecutionTimeMS == nil || *res.ExecutionTimeMS != 500 {
		t.Errorf("expected execution_time_ms 500, got %v", res.ExecutionTimeMS)
	}
}

func TestExecutor_CompilationError(t *testing.T) {
	ex := New(echoRegistry(), nil)
	j := job.NewJob("tok-3", job.Input{
		SourceCode: "int main(){return}",
		LanguageID: 3,
		ProblemID:  "p3",
	})

	res, err := ex.Execute(context.Background(), j)
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	if res.Status != job.StatusCompilationError {
		t.Errorf("expected status compilation_error, got %s", res.Status)
	}
	if res.ExitCode != 1 {
		t.Errorf("expected exit code 1, got %d", res.ExitCode)
	}
}

func TestExecutor_UnsupportedLanguage_NoFilesystemArtifacts(t *testing.T) {
	ex := New(echoRegistry(), nil)
	j := job.NewJob("tok-4", job.Input{
		SourceCode: "x",
		LanguageID: 9999,
		ProblemID:  "p5",
	})

	before := execqTempDirs()

	res, err := ex.Execute(context.Background(), j)
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	if res.Status != job.StatusError {
		t.Errorf("expected status error, got %s", res.Status)
	}
	want := "Unsupported language_id: 9999"
	if res.Stderr != want {
		t.Errorf("expected stderr %q, got %q", want, res.Stderr)
	}

	after := execqTempDirs()
	if len(after) != len(before) {
		t.Errorf("expected no new execq temp dirs, before=%v after=%v", before, after)
	}
}

func TestExecutor_TempDirRemovedAfterExecute(t *testing.T) {
	ex := New(echoRegistry(), nil)
	j := job.NewJob("tok-5", job.Input{
		SourceCode: "hi\n",
		LanguageID: 1,
		ProblemID:  "p1",
	})

	before := execqTempDirs()

	if _, err := ex.Execute(context.Background(), j); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	after := execqTempDirs()
	if len(after) != len(before) {
		t.Errorf("expected temp dir to be cleaned up, before=%v after=%v", before, after)
	}
}
