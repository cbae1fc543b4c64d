package meetbot

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

// RetrieveTranscript fetches one page of the transcript for a recording ID.
// Only the requested page is returned; callers follow HasMore themselves.
func (c *Client) RetrieveTranscript(ctx context.Context, apiKey, transcriptID string, opts TranscriptOptions) (*Transcript, error) {
	const op = "retrieve transcript"
	if err := validateAPIKey(op, apiKey); err != nil {
		return nil, err
	}
	if err := requireNonBlank(op, "id", transcriptID); err != nil {
		return nil, err
	}
	if err := validateTranscriptOptions(op, opts); err != nil {
		return nil, err
	}

	opts = opts.withDefaults()
	params := url.Values{}
	params.Set("page", strconv.Itoa(opts.Page))
	params.Set("limit", strconv.Itoa(opts.Limit))

	var transcript Transcript
	err := c.do(ctx, request{
		op:     op,
		method: http.MethodGet,
		path:   escapePath("transcripts", transcriptID),
		query:  params,
		apiKey: apiKey,
	}, &transcript)
	if err != nil {
		return nil, normalizeError(op, err)
	}

	c.logger.Debug().
		Str("transcript_id", transcriptID).
		Int("page", opts.Page).
		Int("count", len(transcript.Segments)).
		Int("total", transcript.Total).
		Msg("Retrieved transcript page")

	return &transcript, nil
}
