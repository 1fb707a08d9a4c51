// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"fmt"
	"log"
	"strings"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/toolscout/services/scout"
)

var chatCmd = &cobra.Command{
	Use:   "chat <message>",
	Short: "Send one message to the chat model via the server",
	Args:  cobra.MinimumNArgs(1),
	Run:   runChatCommand,
}

func runChatCommand(_ *cobra.Command, args []string) {
	message := strings.Join(args, " ")

	var resp scout.ChatResponse
	err := postJSON(getServerBaseURL()+"/v1/scout/chat",
		scout.ChatRequest{Message: message}, &resp)
	if err != nil {
		log.Fatalf("Error: %v", err)
	}

	fmt.Println(resp.Reply)
}
