package filter

import (
	"bytes"
	"io"
	"mime"
	"mime/multipart"
	"net/mail"
	"strings"
)

var wordDecoder = new(mime.WordDecoder)

// decodeHeader decodes RFC 2047 encoded words, returning the input on failure
func decodeHeader(value string) string {
	decoded, err := wordDecoder.DecodeHeader(value)
	if err != nil {
		return value
	}
	return decoded
}

// messageText returns the subject and text parts of a raw message, the
// parsed message, and an error if the message cannot be parsed
func messageText(raw []byte) (string, *mail.Message, error) {
	msg, err := mail.ReadMessage(bytes.NewReader(raw))
	if err != nil {
		return "", nil, err
	}
	body, err := extractTextFromMessage(msg)
	if err != nil {
		return "", nil, err
	}
	subject := decodeHeader(msg.Header.Get("Subject"))
	if subject == "" {
		return body, msg, nil
	}
	return subject + "\n" + body, msg, nil
}

// extractTextFromMessage extracts the text content from an email message.
// For multipart messages, text/plain parts are concatenated.
func extractTextFromMessage(msg *mail.Message) (string, error) {
	mediaType, params, err := mime.ParseMediaType(msg.Header.Get("Content-Type"))
	if err != nil || !strings.HasPrefix(mediaType, "multipart/") || params["boundary"] == "" {
		bodyBytes, err := io.ReadAll(msg.Body)
		if err != nil {
			return "", err
		}
		return string(bodyBytes), nil
	}

	mr := multipart.NewReader(msg.Body, params["boundary"])
	var textContent bytes.Buffer
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Return what was read before the broken part
			break
		}

		if strings.Contains(strings.ToLower(part.Header.Get("Content-Type")), "text/plain") {
			partBytes, err := io.ReadAll(part)
			if err != nil {
				continue
			}
			textContent.Write(partBytes)
			textContent.WriteString("\n")
		}
	}

	if textContent.Len() > 0 {
		return textContent.String(), nil
	}
	return "", nil
}
