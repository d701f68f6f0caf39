// Package naver scrapes news articles from Naver News.
//
// An article is identified by a press office and a zero-padded numeric id.
// The client reads the title, byline, timestamp and body from the article
// page, then the like count and comment count from two JSONP endpoints.
//
//	client, err := naver.NewClient(naver.NewConfig(naver.WithOfficeID("138")))
//	record, err := client.Fetch(ctx, core.ArticleID(2179100, core.DefaultIDWidth))
//
// Fetch returns an error wrapping core.ErrNotFound for missing articles and
// a *core.TransportError for any other HTTP or network failure.
package naver
