package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/Ghazanfar1991/syncrio/internal/transfer"
)

const (
	mediaChunkSize  = 4 << 20
	maxStatusChecks = 60
)

func (s *twitterService) uploadImage(ctx context.Context, client *http.Client, mediaURL string) (string, error) {
	data, _, err := s.readMedia(ctx, mediaURL)
	if err != nil {
		return "", err
	}

	req, err := multipartRequest(ctx, s.uploadURL, nil, "media", data)
	if err != nil {
		return "", err
	}
	var res transfer.TwitterMediaUpload
	if _, err := s.do(client, req, &res); err != nil {
		return "", err
	}
	return res.MediaIDString, nil
}

// uploadVideo runs the chunked INIT, APPEND, FINALIZE and STATUS sequence.
func (s *twitterService) uploadVideo(ctx context.Context, client *http.Client, mediaURL string) (string, error) {
	resp, err := s.fetchMedia(ctx, mediaURL)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var body io.Reader = resp.Body
	size := resp.ContentLength
	if size < 0 {
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return "", s.errorf("download media: %w", err)
		}
		body, size = bytes.NewReader(data), int64(len(data))
	}

	mediaType := resp.Header.Get("Content-Type")
	if mediaType == "" || mediaType == "application/octet-stream" {
		mediaType = "video/mp4"
	}

	var initRes transfer.TwitterMediaUpload
	err = s.command(ctx, client, url.Values{
		"command":        {"INIT"},
		"total_bytes":    {strconv.FormatInt(size, 10)},
		"media_type":     {mediaType},
		"media_category": {"tweet_video"},
	}, &initRes)
	if err != nil {
		return "", err
	}
	mediaID := initRes.MediaIDString

	buf := make([]byte, mediaChunkSize)
	for segment := 0; ; segment++ {
		n, readErr := io.ReadFull(body, buf)
		if n > 0 {
			fields := map[string]string{
				"command":       "APPEND",
				"media_id":      mediaID,
				"segment_index": strconv.Itoa(segment),
			}
			req, err := multipartRequest(ctx, s.uploadURL, fields, "media", buf[:n])
			if err != nil {
				return "", err
			}
			if _, err := s.do(client, req, nil); err != nil {
				return "", fmt.Errorf("append segment %d: %w", segment, err)
			}
		}
		if readErr == io.EOF || readErr == io.ErrUnexpectedEOF {
			break
		}
		if readErr != nil {
			return "", s.errorf("read media: %w", readErr)
		}
	}

	var finalRes transfer.TwitterMediaUpload
	if err := s.command(ctx, client, url.Values{"command": {"FINALIZE"}, "media_id": {mediaID}}, &finalRes); err != nil {
		return "", err
	}

	if err := s.awaitProcessing(ctx, client, mediaID, finalRes.ProcessingInfo); err != nil {
		return "", err
	}
	return mediaID, nil
}

// awaitProcessing polls STATUS until the upload succeeds or fails, waiting as long as the API asks.
func (s *twitterService) awaitProcessing(ctx context.Context, client *http.Client, mediaID string, info *transfer.TwitterProcessingInfo) error {
	for checks := 0; info != nil; checks++ {
		switch info.State {
		case "succeeded":
			return nil
		case "failed":
			msg := "unknown reason"
			if info.Error != nil {
				msg = info.Error.Message
			}
			return s.errorf("%w: %s", errProcessingFailed, msg)
		}
		if checks >= maxStatusChecks {
			return s.errorf("media %s still processing after %d checks", mediaID, checks)
		}

		wait := time.Duration(info.CheckAfterSecs) * time.Second
		if wait <= 0 {
			wait = time.Second
		}
		if err := s.sleep(ctx, wait); err != nil {
			return err
		}

		q := url.Values{"command": {"STATUS"}, "media_id": {mediaID}}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.uploadURL+"?"+q.Encode(), nil)
		if err != nil {
			return err
		}
		var res transfer.TwitterMediaUpload
		if _, err := s.do(client, req, &res); err != nil {
			return err
		}
		info = res.ProcessingInfo
	}
	return nil
}

func (s *twitterService) command(ctx context.Context, client *http.Client, form url.Values, out interface{}) error {
	req, err := newFormRequest(ctx, s.uploadURL, form)
	if err != nil {
		return err
	}
	_, err = s.do(client, req, out)
	return err
}

func multipartRequest(ctx context.Context, rawURL string, fields map[string]string, fileField string, data []byte) (*http.Request, error) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			return nil, err
		}
	}
	part, err := w.CreateFormFile(fileField, "blob")
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req, nil
}
