// Package line is a minimal LINE Messaging API client covering what the bot
// needs: webhook signature verification, webhook event parsing, message
// content download, and Flex Message replies.
package line
