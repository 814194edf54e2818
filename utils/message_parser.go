package utils

import (
	"fmt"
	"regexp"
)

var messageLinkRe = regexp.MustCompile(`https://discord\.com/channels/(\d+)/(\d+)/(\d+)`)

// ParseMessageLink extracts the channel and message ID from a Discord
// message link.
func ParseMessageLink(link string) (channelID, messageID string, err error) {
	match := messageLinkRe.FindStringSubmatch(link)
	if len(match) != 4 {
		return "", "", fmt.Errorf("not a message link: %s", link)
	}
	return match[2], match[3], nil
}
