package catalog

// builtin is the base card set. Ability ids follow the pattern
// <card>.(skill|ult) and are wired up in the engine's ability registry.
var builtin = map[string]*Definition{
	"emberdrake": {
		ID: "emberdrake", Name: "Emberdrake", Tribe: TribeDragon,
		Class: ClassMelee, Rarity: RarityRare,
		Attack: 45, Defense: 20, MaxHealth: 120,
		StartPA: 2, MaxPA: 6, Cost: 4,
		SkillID: "emberdrake.skill", UltimateID: "emberdrake.ult",
	},
	"cinder-colossus": {
		ID: "cinder-colossus", Name: "Cinder Colossus", Tribe: TribeDragon,
		Class: ClassTank, Rarity: RarityEpic,
		Attack: 30, Defense: 55, MaxHealth: 200,
		StartPA: 2, MaxPA: 6, Cost: 5,
		SkillID: "cinder-colossus.skill", UltimateID: "cinder-colossus.ult",
	},
	"grave-warden": {
		ID: "grave-warden", Name: "Grave Warden", Tribe: TribeUndead,
		Class: ClassTank, Rarity: RarityCommon,
		Attack: 25, Defense: 50, MaxHealth: 170,
		StartPA: 2, MaxPA: 6, Cost: 3,
		SkillID: "grave-warden.skill", UltimateID: "grave-warden.ult",
	},
	"plague-herald": {
		ID: "plague-herald", Name: "Plague Herald", Tribe: TribeUndead,
		Class: ClassRanged, Rarity: RarityRare,
		Attack: 40, Defense: 15, MaxHealth: 100,
		StartPA: 2, MaxPA: 6, Cost: 4,
		SkillID: "plague-herald.skill", UltimateID: "plague-herald.ult",
	},
	"bone-marshal": {
		ID: "bone-marshal", Name: "Bone Marshal", Tribe: TribeUndead,
		Class: ClassSupport, Rarity: RarityEpic,
		Attack: 30, Defense: 25, MaxHealth: 130,
		StartPA: 2, MaxPA: 6, Cost: 5,
		SkillID: "bone-marshal.skill", UltimateID: "bone-marshal.ult",
	},
	"tide-oracle": {
		ID: "tide-oracle", Name: "Tide Oracle", Tribe: TribeSpirit,
		Class: ClassSupport, Rarity: RarityRare,
		Attack: 25, Defense: 20, MaxHealth: 110,
		StartPA: 2, MaxPA: 6, Cost: 3,
		SkillID: "tide-oracle.skill", UltimateID: "tide-oracle.ult",
	},
	"mind-sovereign": {
		ID: "mind-sovereign", Name: "Mind Sovereign", Tribe: TribeSpirit,
		Class: ClassUtility, Rarity: RarityLegendary,
		Attack: 35, Defense: 25, MaxHealth: 140,
		StartPA: 3, MaxPA: 8, Cost: 7,
		SkillID: "mind-sovereign.skill", UltimateID: "mind-sovereign.ult",
	},
	"aether-sapper": {
		ID: "aether-sapper", Name: "Aether Sapper", Tribe: TribeMech,
		Class: ClassUtility, Rarity: RarityRare,
		Attack: 30, Defense: 20, MaxHealth: 100,
		StartPA: 2, MaxPA: 6, Cost: 4,
		SkillID: "aether-sapper.skill", UltimateID: "aether-sapper.ult",
	},
	"clockwork-bulwark": {
		ID: "clockwork-bulwark", Name: "Clockwork Bulwark", Tribe: TribeMech,
		Class: ClassTank, Rarity: RarityCommon,
		Attack: 20, Defense: 60, MaxHealth: 180,
		StartPA: 2, MaxPA: 6, Cost: 3,
		SkillID: "clockwork-bulwark.skill", UltimateID: "clockwork-bulwark.ult",
	},
	"storm-caller": {
		ID: "storm-caller", Name: "Storm Caller", Tribe: TribeSpirit,
		Class: ClassRanged, Rarity: RarityEpic,
		Attack: 50, Defense: 15, MaxHealth: 95,
		StartPA: 2, MaxPA: 6, Cost: 5,
		SkillID: "storm-caller.skill", UltimateID: "storm-caller.ult",
	},
	"fang-ravager": {
		ID: "fang-ravager", Name: "Fang Ravager", Tribe: TribeBeast,
		Class: ClassMelee, Rarity: RarityCommon,
		Attack: 40, Defense: 20, MaxHealth: 115,
		StartPA: 2, MaxPA: 6, Cost: 3,
		SkillID: "fang-ravager.skill", UltimateID: "fang-ravager.ult",
	},
	"pack-alpha": {
		ID: "pack-alpha", Name: "Pack Alpha", Tribe: TribeBeast,
		Class: ClassSupport, Rarity: RarityRare,
		Attack: 35, Defense: 25, MaxHealth: 125,
		StartPA: 2, MaxPA: 6, Cost: 4,
		SkillID: "pack-alpha.skill", UltimateID: "pack-alpha.ult",
	},
	"blood-chanter": {
		ID: "blood-chanter", Name: "Blood Chanter", Tribe: TribeUndead,
		Class: ClassSupport, Rarity: RarityRare,
		Attack: 35, Defense: 20, MaxHealth: 105,
		StartPA: 2, MaxPA: 6, Cost: 4,
		SkillID: "blood-chanter.skill", UltimateID: "blood-chanter.ult",
	},
	"arc-trickster": {
		ID: "arc-trickster", Name: "Arc Trickster", Tribe: TribeMech,
		Class: ClassUtility, Rarity: RarityEpic,
		Attack: 25, Defense: 20, MaxHealth: 100,
		StartPA: 3, MaxPA: 8, Cost: 5,
		SkillID: "arc-trickster.skill", UltimateID: "arc-trickster.ult",
	},
	"echo-sage": {
		ID: "echo-sage", Name: "Echo Sage", Tribe: TribeSpirit,
		Class: ClassUtility, Rarity: RarityUtility,
		Attack: 20, Defense: 15, MaxHealth: 90,
		StartPA: 2, MaxPA: 6, Cost: 3,
		SkillID: "echo-sage.skill", UltimateID: "echo-sage.ult",
	},
	"dusk-stalker": {
		ID: "dusk-stalker", Name: "Dusk Stalker", Tribe: TribeBeast,
		Class: ClassMelee, Rarity: RarityRare,
		Attack: 45, Defense: 25, MaxHealth: 120,
		StartPA: 2, MaxPA: 6, Cost: 4,
		SkillID: "dusk-stalker.skill", UltimateID: "dusk-stalker.ult",
	},
	"hex-veiler": {
		ID: "hex-veiler", Name: "Hex Veiler", Tribe: TribeSpirit,
		Class: ClassUtility, Rarity: RarityRare,
		Attack: 25, Defense: 20, MaxHealth: 95,
		StartPA: 2, MaxPA: 6, Cost: 4,
		SkillID: "hex-veiler.skill", UltimateID: "hex-veiler.ult",
	},
}
