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
	"net/url"
	"strings"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/toolscout/services/scout/catalog"
)

var (
	domainFlag  string
	pricingFlag string
)

var toolCmd = &cobra.Command{
	Use:   "tool <id>",
	Short: "Show one catalog entry",
	Args:  cobra.ExactArgs(1),
	Run:   runToolCommand,
}

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "List catalog entries",
	Args:  cobra.NoArgs,
	Run:   runToolsCommand,
}

func init() {
	toolsCmd.Flags().StringVar(&domainFlag, "domain", "", "Filter by domain (Image, Video, Audio, Code, Text)")
	toolsCmd.Flags().StringVar(&pricingFlag, "pricing", "", "Filter by pricing (free, paid)")
}

func runToolCommand(_ *cobra.Command, args []string) {
	var tool catalog.Tool
	if err := getJSON(getServerBaseURL()+"/v1/scout/tool/"+url.PathEscape(args[0]), &tool); err != nil {
		log.Fatalf("Error: %v", err)
	}
	printTool(tool)
}

func runToolsCommand(_ *cobra.Command, _ []string) {
	query := url.Values{}
	if domainFlag != "" {
		query.Set("domain", domainFlag)
	}
	if pricingFlag != "" {
		query.Set("pricing", pricingFlag)
	}
	endpoint := getServerBaseURL() + "/v1/scout/tools"
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var tools []catalog.Tool
	if err := getJSON(endpoint, &tools); err != nil {
		log.Fatalf("Error: %v", err)
	}

	fmt.Printf("%d tools\n---\n", len(tools))
	for _, tool := range tools {
		fmt.Printf("%-18s %-6s %-5s %s\n", tool.ID, tool.Domain, tool.Pricing, tool.Name)
	}
}

func printTool(tool catalog.Tool) {
	fmt.Printf("%s (%s)\n", tool.Name, tool.ID)
	fmt.Printf("Domain:   %s\n", tool.Domain)
	fmt.Printf("Pricing:  %s\n", tool.Pricing)
	fmt.Printf("Actions:  %s\n", strings.Join(tool.Actions, ", "))
	if tool.Description != "" {
		fmt.Printf("About:    %s\n", tool.Description)
	}
	if len(tool.UseCases) > 0 {
		fmt.Printf("Use for:  %s\n", strings.Join(tool.UseCases, ", "))
	}
	if tool.Website != "" {
		fmt.Printf("Website:  %s\n", tool.Website)
	}
	fmt.Printf("API:      %v\n", tool.APIAvailable)
}
