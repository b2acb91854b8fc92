package prompts

import (
	_ "embed"
)

//go:embed planner_system.txt
var PlannerSystemPrompt string

//go:embed planner.txt
var plannerTemplate string

//go:embed replan.txt
var replanTemplate string

//go:embed judge_system.txt
var JudgeSystemPrompt string

//go:embed judge.txt
var judgeTemplate string
