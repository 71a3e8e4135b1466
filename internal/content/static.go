package content

import (
	"context"
	"sort"
)

// Dataset is an in-memory content set keyed by round number.
type Dataset struct {
	WordCards map[int][]string `yaml:"word_cards"`
	Themes    []Theme          `yaml:"themes"`
}

// Static serves a fixed Dataset. Safe for concurrent use since it is never
// mutated after construction.
type Static struct {
	cards  map[int][]string
	themes []Theme
}

func NewStatic(data Dataset) *Static {
	cards := make(map[int][]string, len(data.WordCards))
	for round, list := range data.WordCards {
		cards[round] = append([]string(nil), list...)
	}
	themes := make([]Theme, 0, len(data.Themes))
	for _, theme := range data.Themes {
		if theme.Name == "" || len(theme.Words) == 0 {
			continue
		}
		themes = append(themes, Theme{Name: theme.Name, Words: append([]string(nil), theme.Words...)})
	}
	sort.SliceStable(themes, func(i, j int) bool { return themes[i].Name < themes[j].Name })
	return &Static{cards: cards, themes: themes}
}

// Builtin returns the dataset compiled into the binary.
func Builtin() *Static {
	return NewStatic(builtinDataset)
}

// BuiltinDataset returns a copy of the compiled-in dataset, for seeding a
// database.
func BuiltinDataset() Dataset {
	out := Dataset{WordCards: make(map[int][]string, len(builtinDataset.WordCards))}
	for round, cards := range builtinDataset.WordCards {
		out.WordCards[round] = append([]string(nil), cards...)
	}
	for _, theme := range builtinDataset.Themes {
		out.Themes = append(out.Themes, Theme{Name: theme.Name, Words: append([]string(nil), theme.Words...)})
	}
	return out
}

func (s *Static) WordCards(_ context.Context, round int) ([]string, error) {
	cards, ok := s.cards[round]
	if !ok || len(cards) == 0 {
		return nil, ErrNoContent
	}
	return append([]string(nil), cards...), nil
}

func (s *Static) Themes(context.Context) ([]Theme, error) {
	if len(s.themes) == 0 {
		return nil, ErrNoContent
	}
	out := make([]Theme, len(s.themes))
	for i, theme := range s.themes {
		out[i] = Theme{Name: theme.Name, Words: append([]string(nil), theme.Words...)}
	}
	return out, nil
}

var builtinDataset = Dataset{
	WordCards: map[int][]string{
		1: {
			"cat, dog, fish, bird, horse, cow, pig, sheep, duck",
			"apple, banana, grape, lemon, cherry, pear, peach, melon, plum",
			"car, bus, train, boat, plane, bike, truck, rocket, scooter",
			"sun, moon, star, cloud, rain, snow, wind, storm, rainbow",
			"hat, shoe, sock, shirt, scarf, glove, belt, dress, coat",
			"chair, table, bed, lamp, door, window, clock, mirror, sofa",
		},
		2: {
			"pizza, burger, taco, sushi, pasta, salad, soup, sandwich, pancake",
			"guitar, piano, drum, violin, trumpet, flute, harp, banjo, bell",
			"doctor, chef, pilot, farmer, painter, teacher, firefighter, dentist, baker",
			"castle, tent, igloo, barn, lighthouse, tower, bridge, cabin, pyramid",
			"soccer, tennis, golf, boxing, skiing, surfing, bowling, archery, rowing",
		},
		3: {
			"volcano, island, desert, jungle, glacier, canyon, waterfall, cave, swamp",
			"dragon, unicorn, mermaid, ghost, robot, wizard, vampire, zombie, fairy",
			"camera, phone, laptop, headphones, remote, battery, printer, speaker, keyboard",
			"ladder, hammer, saw, drill, wrench, shovel, rake, bucket, broom",
			"tornado, earthquake, flood, avalanche, eclipse, comet, meteor, lightning, fog",
		},
		4: {
			"birthday, wedding, picnic, parade, concert, camping, funeral, graduation, holiday",
			"sneeze, yawn, hiccup, wink, shrug, whistle, clap, juggle, dance",
			"octopus, penguin, giraffe, kangaroo, snail, crab, owl, bat, shark",
			"treasure, map, compass, anchor, sword, shield, crown, key, lantern",
			"escalator, elevator, fountain, statue, carousel, ferris wheel, skyscraper, windmill, tunnel",
		},
	},
	Themes: []Theme{
		{Name: "Animals", Words: []string{"elephant", "giraffe", "penguin", "kangaroo", "octopus", "zebra"}},
		{Name: "Food", Words: []string{"pizza", "sushi", "burger", "pancake", "taco", "noodles"}},
		{Name: "Sports", Words: []string{"soccer", "tennis", "boxing", "surfing", "golf", "skiing"}},
		{Name: "Jobs", Words: []string{"doctor", "pilot", "chef", "farmer", "astronaut", "plumber"}},
		{Name: "Vehicles", Words: []string{"bicycle", "helicopter", "submarine", "tractor", "sailboat", "rocket"}},
		{Name: "Weather", Words: []string{"tornado", "rainbow", "blizzard", "lightning", "fog", "heatwave"}},
		{Name: "Instruments", Words: []string{"guitar", "piano", "drums", "violin", "trumpet", "harp"}},
		{Name: "Buildings", Words: []string{"castle", "lighthouse", "igloo", "skyscraper", "barn", "pyramid"}},
		{Name: "Fantasy", Words: []string{"dragon", "unicorn", "wizard", "mermaid", "troll", "phoenix"}},
		{Name: "Kitchen", Words: []string{"toaster", "kettle", "whisk", "blender", "fridge", "spatula"}},
		{Name: "Ocean", Words: []string{"shark", "coral", "jellyfish", "whale", "seahorse", "shipwreck"}},
		{Name: "Space", Words: []string{"planet", "comet", "astronaut", "satellite", "alien", "telescope"}},
		{Name: "Holidays", Words: []string{"fireworks", "snowman", "pumpkin", "present", "parade", "candle"}},
		{Name: "Clothing", Words: []string{"scarf", "sneakers", "tuxedo", "raincoat", "pajamas", "sombrero"}},
		{Name: "Garden", Words: []string{"sunflower", "shovel", "scarecrow", "watering can", "beehive", "mushroom"}},
		{Name: "Tools", Words: []string{"hammer", "wrench", "ladder", "chainsaw", "screwdriver", "magnet"}},
	},
}
