package naver

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

var errNotJSONP = errors.New("response is not JSON or JSONP")

// unwrapJSONP strips a callback wrapper such as cb({...}); or ({...}).
// Plain JSON is returned unchanged.
func unwrapJSONP(data []byte) ([]byte, error) {
	data = bytes.TrimSpace(data)
	data = bytes.TrimSuffix(data, []byte(";"))
	if len(data) > 0 && (data[0] == '{' || data[0] == '[') {
		return data, nil
	}
	open := bytes.IndexByte(data, '(')
	end := bytes.LastIndexByte(data, ')')
	if open < 0 || end <= open {
		return nil, errNotJSONP
	}
	return bytes.TrimSpace(data[open+1 : end]), nil
}

type likeResponse struct {
	Contents []struct {
		Reactions []struct {
			Count int `json:"count"`
		} `json:"reactions"`
	} `json:"contents"`
}

// parseLikeCount reads contents[0].reactions[0].count. Missing entries and
// negative counts are zero.
func parseLikeCount(data []byte) (int, error) {
	inner, err := unwrapJSONP(data)
	if err != nil {
		return 0, err
	}
	var resp likeResponse
	if err := json.Unmarshal(inner, &resp); err != nil {
		return 0, fmt.Errorf("failed to decode like response: %w", err)
	}
	if len(resp.Contents) == 0 || len(resp.Contents[0].Reactions) == 0 {
		return 0, nil
	}
	return max(resp.Contents[0].Reactions[0].Count, 0), nil
}

type commentResponse struct {
	Result *struct {
		Count *struct {
			Comment *int `json:"comment"`
		} `json:"count"`
	} `json:"result"`
}

var errNoCommentCount = errors.New("comment count missing from response")

var errNegativeCommentCount = errors.New("negative comment count in response")

// parseCommentCount reads result.count.comment. A negative count is
// reported as an error so the count is recorded as unavailable.
func parseCommentCount(data []byte) (int, error) {
	inner, err := unwrapJSONP(data)
	if err != nil {
		return 0, err
	}
	var resp commentResponse
	if err := json.Unmarshal(inner, &resp); err != nil {
		return 0, fmt.Errorf("failed to decode comment response: %w", err)
	}
	if resp.Result == nil || resp.Result.Count == nil || resp.Result.Count.Comment == nil {
		return 0, errNoCommentCount
	}
	if *resp.Result.Count.Comment < 0 {
		return 0, errNegativeCommentCount
	}
	return *resp.Result.Count.Comment, nil
}
