package textnorm

// connectors are linking particles pruned when building name variants,
// so "van dijk" and "dijk" both stay reachable.
var connectors = map[string]struct{}{
	"da": {}, "de": {}, "del": {}, "della": {}, "der": {}, "di": {},
	"la": {}, "le": {}, "van": {}, "von": {}, "dos": {}, "das": {},
	"do": {}, "du": {}, "mc": {}, "mac": {},
}

// nicknames maps informal given names to the long form most official
// catalogs carry.
var nicknames = map[string]string{
	"alex":  "alexander",
	"sasha": "alexander",
	"will":  "william",
	"bill":  "william",
	"billy": "william",
	"liam":  "william",
	"ben":   "benjamin",
	"jamie": "james",
	"jim":   "james",
	"joe":   "joseph",
	"josh":  "joshua",
	"matty": "matthew",
	"matt":  "matthew",
	"toni":  "antonio",
	"tony":  "anthony",
	"harry": "harold",
	"nick":  "nicholas",
	"nico":  "nicholas",
	"luiz":  "luis",
	"lucho": "luis",
}
