package nlp

import "strings"

// English stop words.
const stopWordList = `i me my myself we our ours ourselves you you're you've you'll you'd your yours
yourself yourselves he him his himself she she's her hers herself it it's its itself they them their
theirs themselves what which who whom this that that'll these those am is are was were be been being
have has had having do does did doing a an the and but if or because as until while of at by for with
about against between into through during before after above below to from up down in out on off over
under again further then once here there when where why how all any both each few more most other some
such no nor not only own same so than too very s t can will just don don't should should've now d ll m
o re ve y ain aren aren't couldn couldn't didn didn't doesn doesn't hadn hadn't hasn hasn't haven haven't
isn isn't ma mightn mightn't mustn mustn't needn needn't shan shan't shouldn shouldn't wasn wasn't weren
weren't won won't wouldn wouldn't`

const determinerList = `a an the this that these those each every any some no all both either neither another such what which whose`

const pronounList = `i me my mine myself we us our ours ourselves you your yours yourself yourselves he him his himself
she her hers herself it its itself they them their theirs themselves who whom whoever whatever something
anything nothing everything someone anyone everyone nobody`

const prepositionList = `of in on at by for with about against between into through during before after above below
to from up down out off over under via per within without upon across along around among toward towards
behind beyond near since until than`

const conjunctionList = `and or but nor yet so if because while although though unless whereas`

const auxiliaryList = `am is are was were be been being have has had having do does did will would shall should
can could may might must`

const adverbList = `not also very just only then now here there when where why how again further once too
already still even ever never always often soon`

// Verbs recognised in instructions. Base forms; inflections are reduced by the
// lemmatizer before lookup.
const verbList = `extract find locate identify get show list return give determine retrieve fetch pull
capture read look search detect pay send include provide make take see tell state mention specify
contain list record report sign issue bill charge owe receive deliver ship`

// actionVerbs introduce the object phrases collected as key phrases.
const actionVerbList = `extract find locate identify get`

const adjectiveList = `due total net gross final main primary secondary first last next previous current
full partial late early annual monthly weekly daily new old other same different whole overall
outstanding unpaid paid payable receivable legal official billing shipping mailing physical postal`

var adjectiveSuffixes = []string{"al", "ful", "ous", "ive", "able", "ible", "less", "ic", "ish"}

// Titles that start a person's name.
const titleList = `mr mrs ms miss dr prof sir madam dame mx`

// Trailing words that mark an organisation name.
const orgSuffixList = `inc incorporated corp corporation llc llp ltd limited co company group holdings bank
partners associates industries technologies solutions systems services enterprises international
university college institute foundation agency gmbh ag plc sa bv nv pty`

// Trailing words that mark a location name.
const locSuffixList = `river lake mountain mountains ocean sea valley street st avenue ave road rd boulevard
blvd lane ln drive dr park island islands bay county desert forest coast peninsula`

const firstNameList = `james john robert michael william david richard joseph thomas charles christopher daniel
matthew anthony mark donald steven paul andrew joshua kenneth kevin brian george timothy ronald edward
jason jeffrey ryan jacob gary nicholas eric jonathan stephen larry justin scott brandon benjamin samuel
frank gregory raymond alexander patrick jack dennis jerry tyler aaron jose adam henry nathan douglas
peter kyle walter ethan jeremy harold keith christian roger noah gerald carl terry sean austin arthur
lawrence jesse dylan bryan joe jordan billy bruce albert willie gabriel logan alan juan wayne roy ralph
randy eugene vincent russell elijah louis bobby philip johnny mary patricia jennifer linda elizabeth
barbara susan jessica sarah karen nancy lisa betty margaret sandra ashley kimberly emily donna michelle
dorothy carol amanda melissa deborah stephanie rebecca sharon laura cynthia kathleen amy shirley angela
helen anna brenda pamela nicole emma samantha katherine christine debra rachel catherine carolyn janet
ruth jane maria heather diane virginia julie joyce victoria olivia kelly christina lauren joan evelyn judith
megan cheryl andrea hannah martha jacqueline frances gloria ann teresa kathryn sara janice jean alice
madison doris abigail julia judy grace denise amber marilyn beverly danielle theresa sophia marie diana
brittany natalie isabella charlotte rose alexis kayla joseph ayodele mohammed ahmed ali fatima wei li
chen priya raj carlos luis ana sofia lucas mateo hans pierre marco giulia yuki hiroshi`

// Gazetteer of countries, US states and large cities.
const gpeList = `afghanistan albania algeria argentina armenia australia austria bangladesh belgium
bolivia brazil bulgaria cambodia cameroon canada chile china colombia croatia cuba cyprus denmark
ecuador egypt estonia ethiopia finland france germany ghana greece guatemala hungary iceland india
indonesia iran iraq ireland israel italy jamaica japan jordan kazakhstan kenya korea kuwait latvia
lebanon lithuania luxembourg malaysia mexico morocco nepal netherlands nigeria norway pakistan panama
peru philippines poland portugal qatar romania russia rwanda senegal serbia singapore slovakia
slovenia somalia spain sweden switzerland syria taiwan tanzania thailand tunisia turkey uganda ukraine
uruguay venezuela vietnam yemen zambia zimbabwe usa us uk uae america england scotland wales britain
alabama alaska arizona arkansas california colorado connecticut delaware florida georgia hawaii idaho
illinois indiana iowa kansas kentucky louisiana maine maryland massachusetts michigan minnesota
mississippi missouri montana nebraska nevada ohio oklahoma oregon pennsylvania tennessee texas utah
vermont virginia washington wisconsin wyoming london paris berlin madrid rome tokyo beijing shanghai
delhi mumbai lagos cairo nairobi toronto vancouver montreal sydney melbourne chicago houston phoenix
philadelphia dallas austin boston seattle denver atlanta miami detroit portland amsterdam brussels
vienna dublin lisbon prague warsaw stockholm oslo copenhagen helsinki zurich geneva moscow istanbul
dubai singapore seoul bangkok jakarta manila johannesburg accra abuja`

// Multi-word gazetteer entries, matched case-insensitively on whole runs.
var gpePhrases = []string{
	"new york", "new jersey", "new mexico", "new hampshire", "north carolina", "south carolina",
	"north dakota", "south dakota", "west virginia", "rhode island", "united states",
	"united kingdom", "united arab emirates", "south africa", "new zealand", "saudi arabia",
	"hong kong", "los angeles", "san francisco", "san diego", "san jose", "las vegas",
	"new delhi", "mexico city", "sao paulo", "buenos aires", "cape town", "kuala lumpur",
}

// Abbreviations that do not end a sentence.
const abbreviationList = `mr mrs ms dr prof sr jr st inc corp ltd co llc no vs etc e.g i.e approx dept est
jan feb mar apr jun jul aug sep sept oct nov dec fig ave blvd rd`

func wordSet(list string) map[string]struct{} {
	fields := strings.Fields(list)
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return set
}

func has(set map[string]struct{}, w string) bool {
	_, ok := set[w]
	return ok
}
