package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jwebster45206/manga-engine/internal/handlers"
	"github.com/jwebster45206/manga-engine/pkg/romance"
)

var errUsage = errors.New("usage")

const helpText = `Commands:
  work <genre> <style> <title...>   start a new serialization
  draw [focus] [art story charm]    draw a chapter, optionally spending extra points
  finish                            end the current work
  train art|story                   practice at the museum or library
  inspire                           hunt for a new genre or style
  wander                            go out with no plan
  greet <npc>                       say hello to the person you just met
  chat|date|gift|provoke <npc>      spend time with someone
  break <npc>                       cut ties
  <number>                          pick an event choice (1, 2, ...)
  next                              continue to a chained event
  rest                              end the day
  /journal  /copy  /help`

// parseCommand turns one line of input into an action request.
func parseCommand(input string) (handlers.ActionRequest, error) {
	fields := strings.Fields(input)
	if len(fields) == 0 {
		return handlers.ActionRequest{}, fmt.Errorf("%w: empty command", errUsage)
	}
	verb, args := strings.ToLower(fields[0]), fields[1:]

	if n, err := strconv.Atoi(verb); err == nil {
		if n < 1 {
			return handlers.ActionRequest{}, fmt.Errorf("%w: choices start at 1", errUsage)
		}
		return handlers.ActionRequest{Action: handlers.ActionChoose, Choice: n - 1}, nil
	}

	switch verb {
	case "work":
		if len(args) < 3 {
			return handlers.ActionRequest{}, fmt.Errorf("%w: work <genre> <style> <title...>", errUsage)
		}
		return handlers.ActionRequest{
			Action: handlers.ActionStartWork,
			Genre:  args[0],
			Style:  args[1],
			Title:  strings.Join(args[2:], " "),
		}, nil
	case "draw":
		return parseDraw(args)
	case "finish":
		return handlers.ActionRequest{Action: handlers.ActionFinishWork}, nil
	case "train":
		if len(args) != 1 {
			return handlers.ActionRequest{}, fmt.Errorf("%w: train art|story", errUsage)
		}
		return handlers.ActionRequest{Action: handlers.ActionTrain, Stat: strings.ToLower(args[0])}, nil
	case "inspire":
		return handlers.ActionRequest{Action: handlers.ActionInspiration}, nil
	case "wander", "out":
		return handlers.ActionRequest{Action: handlers.ActionWander}, nil
	case "greet":
		if len(args) != 1 {
			return handlers.ActionRequest{}, fmt.Errorf("%w: greet <npc>", errUsage)
		}
		return handlers.ActionRequest{Action: handlers.ActionGreet, NPCID: args[0]}, nil
	case romance.Chat, romance.Date, romance.Gift, romance.Provoke:
		if len(args) != 1 {
			return handlers.ActionRequest{}, fmt.Errorf("%w: %s <npc>", errUsage, verb)
		}
		return handlers.ActionRequest{Action: handlers.ActionInteract, Kind: verb, NPCID: args[0]}, nil
	case "break":
		if len(args) != 1 {
			return handlers.ActionRequest{}, fmt.Errorf("%w: break <npc>", errUsage)
		}
		return handlers.ActionRequest{Action: handlers.ActionBreak, NPCID: args[0]}, nil
	case "next", "continue":
		return handlers.ActionRequest{Action: handlers.ActionContinue}, nil
	case "rest", "sleep":
		return handlers.ActionRequest{Action: handlers.ActionRest}, nil
	}
	return handlers.ActionRequest{}, fmt.Errorf("%w: unknown command %q (try /help)", errUsage, verb)
}

// parseDraw accepts an optional focus id followed by up to three point allocations.
func parseDraw(args []string) (handlers.ActionRequest, error) {
	req := handlers.ActionRequest{Action: handlers.ActionDraw}
	if len(args) > 0 {
		if _, err := strconv.ParseFloat(args[0], 64); err != nil {
			req.Focus = args[0]
			args = args[1:]
		}
	}
	if len(args) > 3 {
		return req, fmt.Errorf("%w: draw [focus] [art story charm]", errUsage)
	}
	targets := []*float64{&req.Allocation.Art, &req.Allocation.Story, &req.Allocation.Charm}
	for i, a := range args {
		v, err := strconv.ParseFloat(a, 64)
		if err != nil || v < 0 {
			return req, fmt.Errorf("%w: allocation %q must be a non-negative number", errUsage, a)
		}
		*targets[i] = v
	}
	return req, nil
}
