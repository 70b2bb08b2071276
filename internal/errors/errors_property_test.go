//go:build property

package errors

import (
	"fmt"
	"sync"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/conneroisu/pathtemplate/pkg/pathtemplate"
)

// TestErrorCollectorProperties validates error collection and aggregation properties
func TestErrorCollectorProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.Rng.Seed(2468)
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	// Property: Error collector should handle concurrent error addition safely
	properties.Property("concurrent error addition is thread-safe", prop.ForAll(
		func(goroutineCount int, errorsPerGoroutine int) bool {
			collector := NewErrorCollector()

			var wg sync.WaitGroup
			for g := 0; g < goroutineCount; g++ {
				wg.Add(1)
				go func(goroutineID int) {
					defer wg.Done()
					for e := 0; e < errorsPerGoroutine; e++ {
						collector.Add(TemplateError{
							Template: fmt.Sprintf("template_%d_%d", goroutineID, e),
							Message:  "invalid",
							Severity: ErrorSeverityError,
						})
					}
				}(g)
			}
			wg.Wait()

			return len(collector.GetErrors()) == goroutineCount*errorsPerGoroutine
		},
		gen.IntRange(1, 10),
		gen.IntRange(1, 20),
	))

	// Property: Templates lists each failing template once
	properties.Property("templates are deduplicated", prop.ForAll(
		func(names []string) bool {
			collector := NewErrorCollector()
			unique := make(map[string]bool)
			for _, name := range names {
				collector.Add(TemplateError{Template: name, Severity: ErrorSeverityWarning})
				unique[name] = true
			}
			return len(collector.Templates()) == len(unique)
		},
		gen.SliceOf(gen.OneConstOf("a", "b", "c", "d")),
	))

	// Property: render failures always classify to a non-zero exit code
	properties.Property("render errors map to exit codes", prop.ForAll(
		func(name string) bool {
			_, err := pathtemplate.Render("/x/{"+name+"}", map[string]string{})
			return ExitCode(FromRenderError(err, name)) == ExitBindings
		},
		gen.RegexMatch(`^[a-z][a-z0-9_]{0,10}$`),
	))

	properties.TestingRun(t)
}
