package sim

import (
	"github.com/jwebster45206/garden-quest/pkg/anim"
	"github.com/jwebster45206/garden-quest/pkg/dialogue"
)

// act handles a release of the action control. The first matching branch wins.
func (e *Engine) act() {
	if e.message != "" {
		e.message = ""
		e.audio.SetMusicVolume(AmbientVolume)
		return
	}

	hs := e.player.Hotspot
	if item := e.level.Item; item != nil && hs.Overlaps(item.Rect) {
		e.pickUp()
		return
	}
	if npc := e.level.NPC; npc != nil && hs.Overlaps(npc.Rect) {
		e.talk()
	}
}

func (e *Engine) pickUp() {
	name := e.level.Item.Name
	if name == dialogue.ItemWater && e.player.Held != dialogue.ItemBottle {
		e.logger.Debug("Cannot carry water without a bottle", "held", e.player.Held)
		return
	}

	e.player.Held = name
	e.level.Item = nil
	e.consumed.Put(name)
	e.logger.Debug("Picked up item", "item", name)
	e.emit(EventItemPicked, name, "")

	if name == dialogue.ItemHeart {
		e.won = true
		e.winT0 = e.tick
		e.logger.Info("Game won", "tick", e.tick)
		e.emit(EventWon, name, "")
	}
}

func (e *Engine) talk() {
	npc := e.level.NPC
	name := npc.Name
	state := e.NPCState(name)
	held := e.player.Held

	tr := dialogue.Tick(dialogue.KindOf(name), state, held)
	if !tr.Changed(state, held) {
		return
	}

	if tr.State != state {
		e.npcState.Set(name, tr.State)
	}
	e.player.Held = tr.Held
	if tr.Visual != "" {
		e.visuals.Set(name, tr.Visual)
	}
	if tr.Consume {
		e.consumed.Put(name)
	}
	if tr.Message != "" {
		e.message = tr.Message
		e.audio.SetMusicVolume(DuckedVolume)
	}
	if tr.Sound != dialogue.SoundNone {
		e.audio.PlaySound(tr.Sound)
	}

	e.logger.Debug("NPC script", "npc", name, "state", tr.State, "held", tr.Held)
	if tr.Message != "" {
		e.emit(EventNPCSpoke, name, tr.Message)
	}

	switch {
	case tr.Remove:
		e.level.NPC = nil
		e.emit(EventNPCRemoved, name, "")
	case tr.Become != "":
		npc.Name = tr.Become
		e.kaboomOn = false
	}
}

// updateKaboom starts the explosion clock on its first frame and clears the NPC
// when it runs out.
func (e *Engine) updateKaboom() {
	npc := e.level.NPC
	if npc == nil || npc.Name != dialogue.NameKaboom {
		return
	}
	if !e.kaboomOn {
		e.kaboomOn = true
		e.kaboomT0 = e.tick
	}
	if e.tick >= e.kaboomT0+KaboomDuration {
		e.level.NPC = nil
		e.kaboomOn = false
		e.emit(EventNPCRemoved, dialogue.NameKaboom, "")
	}
}

// WinPhase returns the bounce phase of the victory animation, in [0, 1].
func (e *Engine) WinPhase() (float64, bool) {
	if !e.won {
		return 0, false
	}
	return anim.BoundCyclicBackAndForth(float64(e.tick-e.winT0) / 1000), true
}
