package game

// TurnInfo 回合推进后的阶段与回合号
type TurnInfo struct {
	Stage Stage `json:"currentStage"`
	Turn  int   `json:"turnNumber"`
}

// NextTurn 当前玩家结束回合：回合号 +1，步数清零，满一整轮后进入 proper
func (s *Session) NextTurn(requesterID string) (TurnInfo, error) {
	if err := s.checkCurrent(requesterID); err != nil {
		return TurnInfo{}, err
	}
	s.turn++
	s.usedMoves = 0
	// turn / len > 1，整数比较避免浮点
	if s.stage == StageBasePlacement && s.turn > len(s.players) {
		s.stage = StageProper
	}
	return TurnInfo{Stage: s.stage, Turn: s.turn}, nil
}

// checkCurrent 已开局、在名单中、且轮到该玩家
func (s *Session) checkCurrent(requesterID string) error {
	if !s.started {
		return failf(KindGameNotStarted, "the game is not started")
	}
	p := s.Player(requesterID)
	if p == nil {
		return failf(KindUnknownPlayer, "player %q is not in the session", requesterID)
	}
	if p != s.CurrentPlayer() {
		return failf(KindNotYourTurn, "it is %s's turn", s.CurrentPlayer().ID)
	}
	return nil
}

// incrementMove 每次成功建造调用一次，是 usedMoves 唯一的递增入口
func (s *Session) incrementMove() { s.usedMoves++ }
