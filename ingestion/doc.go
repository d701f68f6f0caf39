// Package ingestion fetches articles from a source, embeds them and
// stores them.
//
// A Pipeline walks a range of numeric article ids in order. For each id it
// fetches the article, requests a title vector and a body vector, assigns a
// fresh random key and writes the document. Items are independent:
//
//   - a missing article is skipped
//   - a failed embedding leaves that vector null and the write goes ahead
//   - a failed fetch or write is recorded in the Report and the run continues
//
// Fetches are spaced by a Pacer (one second by default). Cancelling the
// context stops the run before the next id.
//
// Example:
//
//	pipeline, err := ingestion.NewPipeline(store, naverClient, provider,
//	    ingestion.WithProgress(ingestion.NewProgressPrinter(os.Stderr)))
//	report, err := pipeline.IngestRange(ctx, 2179100, 400)
//	fmt.Println(report.Summary())
package ingestion
