// Package dialogue holds the fixed conversation scripts of the NPCs.
//
// Each NPC kind has its own transition function. Given the NPC's state code and the
// item the player holds, it returns the next state code together with every side
// effect of the exchange; the engine applies the effects.
package dialogue

// Kind identifies an NPC script.
type Kind int

const (
	Unknown Kind = iota
	Elf
	Chest
	Flame
	Wizard
	Garden
	Dragon
	Kaboom
)

// NPC names as they appear in room documents.
const (
	NameElf    = "elf"
	NameChest  = "bottle"
	NameFlame  = "flame"
	NameWizard = "wizard"
	NameGarden = "garden"
	NameDragon = "dragon"
	NameKaboom = "kaboom"
)

// Item names.
const (
	ItemCane   = "cane"
	ItemKey    = "key"
	ItemBottle = "bottle"
	ItemWater  = "water"
	ItemHeart  = "heart"
	ItemStaff  = "staff"
	ItemSpell  = "spell"
)

// VisualChestOpen is the visual shown once the chest is unlocked.
const VisualChestOpen = "chest_open"

var kindNames = map[string]Kind{
	NameElf:    Elf,
	NameChest:  Chest,
	NameFlame:  Flame,
	NameWizard: Wizard,
	NameGarden: Garden,
	NameDragon: Dragon,
	NameKaboom: Kaboom,
}

// KindOf maps an NPC name to its script.
func KindOf(name string) Kind {
	if k, ok := kindNames[name]; ok {
		return k
	}
	return Unknown
}

func (k Kind) String() string {
	switch k {
	case Elf:
		return NameElf
	case Chest:
		return NameChest
	case Flame:
		return NameFlame
	case Wizard:
		return NameWizard
	case Garden:
		return NameGarden
	case Dragon:
		return NameDragon
	case Kaboom:
		return NameKaboom
	default:
		return "unknown"
	}
}

// Sound is a named audio cue.
type Sound string

const (
	SoundNone         Sound = ""
	SoundElfHungry    Sound = "elf_0"
	SoundElfBegging   Sound = "elf_1"
	SoundElfThanks    Sound = "elf_2"
	SoundOpen         Sound = "open"
	SoundLocked       Sound = "locked"
	SoundEmpty        Sound = "empty"
	SoundFlame        Sound = "flame"
	SoundWizardLost   Sound = "wiz_0"
	SoundWizardTeach  Sound = "wiz_1"
	SoundWizardThanks Sound = "wiz_2"
	SoundGarden       Sound = "garden"
)

// Transition is the outcome of talking to an NPC.
type Transition struct {
	State   int    // next state code
	Held    string // item held afterwards, "" for none
	Message string // text to display, "" for none
	Sound   Sound

	Consume bool   // never spawn this NPC again
	Remove  bool   // take the NPC out of the current room
	Become  string // replace the NPC in the room by another identity
	Visual  string // new visual for this NPC name
}

// Changed reports whether the exchange did anything.
func (t Transition) Changed(state int, held string) bool {
	return t.State != state || t.Held != held || t.Message != "" || t.Sound != SoundNone ||
		t.Consume || t.Remove || t.Become != "" || t.Visual != ""
}

// Script is the transition function of one NPC kind.
type Script func(state int, held string) Transition

var scripts = map[Kind]Script{
	Elf:    elf,
	Chest:  chest,
	Flame:  flame,
	Wizard: wizard,
	Garden: garden,
	Dragon: dragon,
}

// Tick runs the script of k. Kinds without a script leave everything unchanged.
func Tick(k Kind, state int, held string) Transition {
	s, ok := scripts[k]
	if !ok {
		return Transition{State: state, Held: held}
	}
	return s(state, held)
}

func elf(state int, held string) Transition {
	if state == 0 {
		return Transition{
			State:   1,
			Held:    held,
			Message: "I'm hungry. I want candy.",
			Sound:   SoundElfHungry,
		}
	}
	if held == ItemCane {
		return Transition{
			State:   2,
			Message: "A candy cane! Thank you so much. You may pass.",
			Sound:   SoundElfThanks,
			Consume: true,
			Remove:  true,
		}
	}
	return Transition{
		State:   state,
		Held:    held,
		Message: "I'm so hungry. I really want candy!",
		Sound:   SoundElfBegging,
	}
}

func chest(state int, held string) Transition {
	switch state {
	case 0:
		if held == ItemKey {
			return Transition{
				State:   1,
				Held:    ItemBottle,
				Message: "You open the chest with the key, and find an empty bottle.",
				Sound:   SoundOpen,
				Visual:  VisualChestOpen,
			}
		}
		return Transition{
			State:   0,
			Held:    held,
			Message: "The chest is locked.",
			Sound:   SoundLocked,
		}
	case 1:
		return Transition{
			State:   1,
			Held:    held,
			Message: "The chest is empty.",
			Sound:   SoundEmpty,
		}
	}
	return Transition{State: state, Held: held}
}

func flame(state int, held string) Transition {
	if state == 0 && held == ItemWater {
		return Transition{
			State:   1,
			Held:    ItemStaff,
			Message: "You douse the flame with your water bottle, and find a magic staff.",
			Sound:   SoundFlame,
			Consume: true,
			Remove:  true,
		}
	}
	return Transition{State: state, Held: held}
}

func wizard(state int, held string) Transition {
	switch {
	case state == 1 && held == ItemStaff:
		return Transition{
			State:   2,
			Held:    ItemSpell,
			Message: "You found my staff. Thank you. Let me teach you the magic spell 'Kaboom'.",
			Sound:   SoundWizardTeach,
		}
	case state == 2:
		return Transition{
			State:   2,
			Held:    held,
			Message: "Thank you for returning my staff.",
			Sound:   SoundWizardThanks,
		}
	}
	next := state
	if state == 0 {
		next = 1
	}
	return Transition{
		State:   next,
		Held:    held,
		Message: "I cannot find my magic staff. Will you help?",
		Sound:   SoundWizardLost,
	}
}

func garden(state int, held string) Transition {
	return Transition{
		State:   state,
		Held:    held,
		Message: "This is princess Purple Dress's garden, and don't go pass it or eat the carrots please.",
		Sound:   SoundGarden,
	}
}

func dragon(state int, held string) Transition {
	if held == ItemSpell {
		return Transition{
			State:   state,
			Consume: true,
			Become:  NameKaboom,
		}
	}
	return Transition{State: state, Held: held}
}
